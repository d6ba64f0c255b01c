// Package chat is the chat-session manager: it creates, stores, mutates and
// replays ordered conversation threads, runs one request/response turn at a
// time against the remote text-generation endpoint, and records every
// outcome, failures included, as a conversation entry.
//
// A Manager owns three collaborating parts:
//
//   - Store: newest-first sessions, mirrored to a Persister after every mutation.
//   - Controller: the active-session pointer and the visible message list.
//   - Coordinator: the Idle -> Sending -> Idle turn state machine and busy flag.
package chat

import (
	"time"
	"unicode/utf8"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation. Messages are never modified after
// they are appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a message typed by the user.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage builds a reply (or a recorded error) from the assistant side.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// Session is one conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// clone returns a copy whose message slice is not shared with s.
func (s Session) clone() Session {
	c := s
	c.Messages = append([]Message(nil), s.Messages...)
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	return c
}

// LastMessage returns the most recent message, if any.
func (s Session) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

const (
	titleMaxRunes = 30
	titleEllipsis = "..."
)

// TitleFor derives a session title from the first user message: the first 30
// characters, with "..." appended when the text is longer.
func TitleFor(text string) string {
	if utf8.RuneCountInString(text) <= titleMaxRunes {
		return text
	}
	n := 0
	for i := range text {
		if n == titleMaxRunes {
			return text[:i] + titleEllipsis
		}
		n++
	}
	return text
}
