package tui

import (
	"io"
	"strings"
	"sync"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
)

// Event kinds recorded by BufferIO.
const (
	EventReset     = "reset"
	EventHistory   = "history"
	EventUser      = "user"
	EventAssistant = "assistant"
	EventThinking  = "thinking"
	EventDone      = "done"
	EventSystem    = "system"
	EventError     = "error"
	EventStatus    = "status"
)

// BufferEvent is one call made on a BufferIO.
type BufferEvent struct {
	Kind string
	Text string
}

// BufferIO is a scripted IO: ReadInput replays fixed lines, then io.EOF,
// and every output call is recorded. It drives the assistant in tests and
// in non-interactive runs.
type BufferIO struct {
	mu      sync.Mutex
	inputs  []string
	events  []BufferEvent
	cleared int
	status  string
}

var _ IO = (*BufferIO)(nil)

// NewBufferIO creates a BufferIO that will return inputs in order.
func NewBufferIO(inputs ...string) *BufferIO {
	return &BufferIO{inputs: inputs}
}

func (b *BufferIO) ReadInput() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.inputs) == 0 {
		return "", io.EOF
	}
	line := b.inputs[0]
	b.inputs = b.inputs[1:]
	return line, nil
}

func (b *BufferIO) record(kind, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, BufferEvent{Kind: kind, Text: text})
}

func (b *BufferIO) ClearPrompt() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleared++
}

func (b *BufferIO) Reset() { b.record(EventReset, "") }

func (b *BufferIO) History(msgs []chat.Message) {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = string(m.Role) + ": " + m.Content
	}
	b.record(EventHistory, strings.Join(parts, "\n"))
}

func (b *BufferIO) UserMessage(text string)      { b.record(EventUser, text) }
func (b *BufferIO) AssistantMessage(text string) { b.record(EventAssistant, text) }
func (b *BufferIO) ThinkingStart()               { b.record(EventThinking, "") }
func (b *BufferIO) ThinkingDone()                { b.record(EventDone, "") }
func (b *BufferIO) SystemMessage(text string)    { b.record(EventSystem, text) }
func (b *BufferIO) Error(msg string)             { b.record(EventError, msg) }

func (b *BufferIO) SetStatus(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// Events returns a copy of everything recorded so far.
func (b *BufferIO) Events() []BufferEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]BufferEvent(nil), b.events...)
}

// Texts returns the text of every event of the given kind.
func (b *BufferIO) Texts(kind string) []string {
	var out []string
	for _, ev := range b.Events() {
		if ev.Kind == kind {
			out = append(out, ev.Text)
		}
	}
	return out
}

// Output returns all assistant and system text, one entry per line.
func (b *BufferIO) Output() string {
	var sb strings.Builder
	for _, ev := range b.Events() {
		switch ev.Kind {
		case EventAssistant, EventSystem, EventHistory:
			sb.WriteString(ev.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Cleared reports how often the prompt was cleared.
func (b *BufferIO) Cleared() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cleared
}

func (b *BufferIO) Status() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}
