// Package provider puts the LLM backends the relay can forward prompts to
// behind one interface. Each adapter turns its vendor's streaming response
// into the same Event sequence.
package provider

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one text turn sent to the model.
type Message struct {
	Role    Role
	Content string
}

// ChatRequest is the vendor-neutral request.
type ChatRequest struct {
	Model        string
	Messages     []Message
	SystemPrompt string
	MaxTokens    int
}

// Prompt builds the single-turn request the relay sends for /ask-ai.
func Prompt(text, systemPrompt string, maxTokens int) *ChatRequest {
	return &ChatRequest{
		Messages:     []Message{{Role: RoleUser, Content: text}},
		SystemPrompt: systemPrompt,
		MaxTokens:    maxTokens,
	}
}

type EventType int

const (
	// EventTextDelta carries a chunk of generated text.
	EventTextDelta EventType = iota

	// EventDone ends the stream and carries token usage.
	EventDone

	EventError
)

// Event is one item of a provider's output stream.
type Event struct {
	Type EventType

	TextDelta string
	Usage     *Usage
	Error     error
}

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is an LLM backend.
type Provider interface {
	// Chat starts a streaming completion. The channel yields events until
	// EventDone or EventError and is then closed; callers must drain it.
	Chat(ctx context.Context, req *ChatRequest) (<-chan Event, error)

	// Name identifies the backend: "openai", "gemini", "anthropic", ...
	Name() string

	DefaultModel() string
}
