// Package tui holds the terminal front-ends of the chat assistant: a plain
// line-oriented one, a bubbletea one, and a scripted one for tests.
package tui

import "github.com/Wirdan-Gohar/AI-Assistant/internal/chat"

// Texts shown while composing and waiting.
const (
	Placeholder  = "Ask me anything!"
	ThinkingText = "AI is thinking..."
)

// IO is everything the assistant loop needs from a front-end. Implementations
// must be safe to call from the goroutine running the loop.
type IO interface {
	chat.PromptBuffer

	// ReadInput blocks for the next line the user submits. It returns
	// io.EOF when the user quits.
	ReadInput() (string, error)

	// Reset clears the visible conversation before another one is shown.
	Reset()

	// History renders a stored conversation after Reset.
	History(msgs []chat.Message)

	// UserMessage echoes a prompt the user just submitted.
	UserMessage(text string)
	AssistantMessage(text string)

	// ThinkingStart and ThinkingDone bracket the wait for a reply.
	ThinkingStart()
	ThinkingDone()

	SystemMessage(text string)
	Error(msg string)

	// SetStatus replaces the status line (active chat, session count).
	SetStatus(status string)
}
