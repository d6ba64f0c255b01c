package chat

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/storage"
)

// askerFunc adapts a function to the Asker interface.
type askerFunc func(ctx context.Context, prompt string) (string, error)

func (f askerFunc) Ask(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

func answering(answer string) askerFunc {
	return func(context.Context, string) (string, error) { return answer, nil }
}

func failing(err error) askerFunc {
	return func(context.Context, string) (string, error) { return "", err }
}

// countingAsker records how many remote calls were made.
type countingAsker struct {
	calls atomic.Int32
	next  Asker
}

func (c *countingAsker) Ask(ctx context.Context, prompt string) (string, error) {
	c.calls.Add(1)
	return c.next.Ask(ctx, prompt)
}

// brokenPersister fails every operation.
type brokenPersister struct {
	saves atomic.Int32
}

var errDiskFull = errors.New("disk full")

func (b *brokenPersister) LoadSessions() ([]Session, error) { return nil, errDiskFull }
func (b *brokenPersister) SaveSessions([]Session) error {
	b.saves.Add(1)
	return errDiskFull
}
func (b *brokenPersister) LoadActiveID() (string, error) { return "", errDiskFull }
func (b *brokenPersister) SaveActiveID(string) error   { return errDiskFull }

type recordingBuffer struct {
	cleared atomic.Int32
}

func (r *recordingBuffer) ClearPrompt() { r.cleared.Add(1) }

var testEpoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func sequentialIDs() func() string {
	var n atomic.Int32
	return func() string { return fmt.Sprintf("s%d", n.Add(1)) }
}

func newTestManager(kv storage.KV, asker Asker, opts ...Option) *Manager {
	base := []Option{
		WithClock(clockwork.NewFakeClockAt(testEpoch)),
		WithIDGenerator(sequentialIDs()),
	}
	return NewManager(NewKVPersister(kv), asker, append(base, opts...)...)
}
