package chat

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Asker is the remote text-generation endpoint. Ask blocks until the
// endpoint answers or the transport gives up.
//
// A failure reported by the endpoint itself must be returned as a
// *ServerError; every other error is treated as "could not reach server".
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// ServerError is an error payload returned by the endpoint.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return "server error: " + e.Message
}

// PromptBuffer is the text the user is composing.
type PromptBuffer interface {
	ClearPrompt()
}

// Conversation entries recorded when a turn fails.
const (
	serverErrorPrefix   = "Error: "
	ConnectivityMessage = "Error connecting to AI."
)

// ServerErrorMessage is the assistant entry recorded for a server-reported failure.
func ServerErrorMessage(serverText string) string {
	return serverErrorPrefix + serverText
}

// IsErrorEntry reports whether an assistant entry records a failed turn.
func IsErrorEntry(content string) bool {
	return content == ConnectivityMessage || strings.HasPrefix(content, serverErrorPrefix)
}

type TurnState int32

const (
	TurnIdle TurnState = iota
	TurnSending
	TurnSucceeded
	TurnFailed
)

func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnSending:
		return "sending"
	case TurnSucceeded:
		return "succeeded"
	case TurnFailed:
		return "failed"
	default:
		return fmt.Sprintf("TurnState(%d)", int32(s))
	}
}

// Coordinator runs one request/response turn at a time.
type Coordinator struct {
	store      *Store
	controller *Controller
	asker      Asker
	buffer     PromptBuffer
	log        zerolog.Logger

	busy  atomic.Bool
	state atomic.Int32
}

// NewCoordinator wires a coordinator to the store and controller it mutates.
func NewCoordinator(store *Store, controller *Controller, asker Asker, opts ...Option) *Coordinator {
	return newCoordinator(store, controller, asker, buildOptions(opts))
}

func newCoordinator(store *Store, controller *Controller, asker Asker, o options) *Coordinator {
	return &Coordinator{
		store:      store,
		controller: controller,
		asker:      asker,
		buffer:     o.buffer,
		log:        o.log,
	}
}

// Busy reports whether a turn is in flight.
func (c *Coordinator) Busy() bool { return c.busy.Load() }

// State returns the current turn state.
func (c *Coordinator) State() TurnState { return TurnState(c.state.Load()) }

// Submit runs one turn for promptText. Blank prompts and prompts submitted
// while another turn is in flight are ignored. The user message is stored
// before the remote call; the reply, or a readable error, is stored after
// it. Submit never returns an error: failures become conversation entries.
func (c *Coordinator) Submit(ctx context.Context, promptText string) {
	if strings.TrimSpace(promptText) == "" {
		return
	}
	if !c.busy.CompareAndSwap(false, true) {
		c.log.Debug().Msg("turn already in flight, ignoring submit")
		return
	}
	defer func() {
		c.state.Store(int32(TurnIdle))
		c.busy.Store(false)
	}()

	userMsg := UserMessage(promptText)
	sessionID := c.controller.ActiveID()
	if sessionID == "" {
		sess := c.store.CreateSession(userMsg)
		sessionID = sess.ID
		c.controller.SelectChat(sessionID)
	} else {
		c.store.AppendMessage(sessionID, userMsg)
	}

	if c.buffer != nil {
		c.buffer.ClearPrompt()
	}

	c.state.Store(int32(TurnSending))
	answer, err := c.asker.Ask(ctx, promptText)
	if err != nil {
		c.state.Store(int32(TurnFailed))
		c.log.Warn().Err(err).Str("session", sessionID).Msg("turn failed")
		c.store.AppendMessage(sessionID, AssistantMessage(failureText(err)))
		return
	}

	c.state.Store(int32(TurnSucceeded))
	c.store.AppendMessage(sessionID, AssistantMessage(answer))
}

func failureText(err error) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return ServerErrorMessage(serverErr.Message)
	}
	return ConnectivityMessage
}
