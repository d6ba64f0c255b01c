package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/storage"
)

func TestSubmitBlankPrompt(t *testing.T) {
	kv := storage.NewMemory()
	asker := &countingAsker{next: answering("unused")}
	m := newTestManager(kv, asker)

	for _, prompt := range []string{"", "   ", "\n\t "} {
		m.Submit(context.Background(), prompt)
	}

	assert.Equal(t, int32(0), asker.calls.Load())
	assert.Empty(t, m.Sessions())
	_, err := kv.Get(KeySessions)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSubmitStartsSession(t *testing.T) {
	kv := storage.NewMemory()
	m := newTestManager(kv, answering("Paris"))

	m.Submit(context.Background(), "What is the capital of France?")

	sessions := m.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "What is the capital of France?", sessions[0].Title)
	assert.Equal(t, []Message{
		UserMessage("What is the capital of France?"),
		AssistantMessage("Paris"),
	}, sessions[0].Messages)
	assert.Equal(t, sessions[0].ID, m.ActiveID())
	assert.Equal(t, sessions[0].Messages, m.CurrentMessages())
	assert.Equal(t, sessions, persisted(t, kv))
	assert.False(t, m.Busy())
	assert.Equal(t, TurnIdle, m.State())
}

func TestSubmitContinuesActiveSession(t *testing.T) {
	m := newTestManager(storage.NewMemory(), askerFunc(func(_ context.Context, prompt string) (string, error) {
		return "re: " + prompt, nil
	}))

	m.Submit(context.Background(), "one")
	m.Submit(context.Background(), "two")

	sessions := m.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "one", sessions[0].Title)
	assert.Equal(t, []Message{
		UserMessage("one"), AssistantMessage("re: one"),
		UserMessage("two"), AssistantMessage("re: two"),
	}, sessions[0].Messages)
}

func TestSubmitAfterNewChat(t *testing.T) {
	m := newTestManager(storage.NewMemory(), answering("ok"))

	m.Submit(context.Background(), "first")
	m.NewChat()
	m.Submit(context.Background(), "second")

	sessions := m.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "second", sessions[0].Title)
	assert.Equal(t, "first", sessions[1].Title)
	assert.Equal(t, sessions[0].ID, m.ActiveID())
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "unreachable", err: errors.New("dial tcp: connection refused"), want: "Error connecting to AI."},
		{name: "server error", err: &ServerError{Status: 500, Message: "AI failed to respond"}, want: "Error: AI failed to respond"},
		{name: "wrapped server error", err: errors.Wrap(&ServerError{Message: "quota exceeded"}, "ask"), want: "Error: quota exceeded"},
		{name: "bad request", err: &ServerError{Status: 400, Message: "Prompt is required"}, want: "Error: Prompt is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemory()
			m := newTestManager(kv, failing(tt.err))

			m.Submit(context.Background(), "Hello")

			msgs := m.CurrentMessages()
			require.Len(t, msgs, 2)
			assert.Equal(t, UserMessage("Hello"), msgs[0])
			assert.Equal(t, AssistantMessage(tt.want), msgs[1])
			assert.Equal(t, msgs, persisted(t, kv)[0].Messages)
			assert.False(t, m.Busy())
		})
	}
}

func TestSubmitClearsPromptBuffer(t *testing.T) {
	buf := &recordingBuffer{}
	m := newTestManager(storage.NewMemory(), answering("ok"), WithPromptBuffer(buf))

	m.Submit(context.Background(), "  ")
	assert.Equal(t, int32(0), buf.cleared.Load())

	m.Submit(context.Background(), "hello")
	assert.Equal(t, int32(1), buf.cleared.Load())
}

func TestUserMessageStoredBeforeRemoteCall(t *testing.T) {
	kv := storage.NewMemory()
	var during []Session
	var m *Manager
	m = newTestManager(kv, askerFunc(func(context.Context, string) (string, error) {
		during = persisted(t, kv)
		assert.Equal(t, TurnSending, m.State())
		return "answer", nil
	}))

	m.Submit(context.Background(), "question")

	require.Len(t, during, 1)
	assert.Equal(t, []Message{UserMessage("question")}, during[0].Messages)
}

// blockingAsker holds the remote call open until released.
type blockingAsker struct {
	entered chan struct{}
	release chan struct{}
	calls   int
}

func newBlockingAsker() *blockingAsker {
	return &blockingAsker{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingAsker) Ask(ctx context.Context, prompt string) (string, error) {
	b.calls++
	b.entered <- struct{}{}
	select {
	case <-b.release:
		return "answer to " + prompt, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSubmitWhileBusyIsIgnored(t *testing.T) {
	kv := storage.NewMemory()
	asker := newBlockingAsker()
	m := newTestManager(kv, asker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Submit(context.Background(), "first")
	}()

	select {
	case <-asker.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("remote call never started")
	}
	assert.True(t, m.Busy())
	assert.Equal(t, TurnSending, m.State())

	before := m.Sessions()
	m.Submit(context.Background(), "second")
	assert.Equal(t, before, m.Sessions())

	close(asker.release)
	<-done

	assert.Equal(t, 1, asker.calls)
	assert.False(t, m.Busy())
	msgs := m.CurrentMessages()
	assert.Equal(t, []Message{UserMessage("first"), AssistantMessage("answer to first")}, msgs)
}

func TestReplyLandsInOriginatingSession(t *testing.T) {
	asker := newBlockingAsker()
	m := newTestManager(storage.NewMemory(), asker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Submit(context.Background(), "slow question")
	}()
	<-asker.entered
	origin := m.ActiveID()
	require.NotEmpty(t, origin)

	m.NewChat()
	close(asker.release)
	<-done

	assert.Equal(t, "", m.ActiveID())
	sess, ok := m.Session(origin)
	require.True(t, ok)
	assert.Equal(t, []Message{UserMessage("slow question"), AssistantMessage("answer to slow question")}, sess.Messages)
}

func TestReplyDroppedWhenSessionDeletedMidTurn(t *testing.T) {
	asker := newBlockingAsker()
	m := newTestManager(storage.NewMemory(), asker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Submit(context.Background(), "doomed")
	}()
	<-asker.entered
	m.DeleteSession(m.ActiveID())
	close(asker.release)
	<-done

	assert.Empty(t, m.Sessions())
	assert.Equal(t, "", m.ActiveID())
}

func TestSubmitCanceledContext(t *testing.T) {
	asker := newBlockingAsker()
	m := newTestManager(storage.NewMemory(), asker)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Submit(ctx, "never answered")
	}()
	<-asker.entered
	cancel()
	<-done

	msgs := m.CurrentMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, AssistantMessage(ConnectivityMessage), msgs[1])
}

func TestTurnStateString(t *testing.T) {
	assert.Equal(t, "idle", TurnIdle.String())
	assert.Equal(t, "sending", TurnSending.String())
	assert.Equal(t, "succeeded", TurnSucceeded.String())
	assert.Equal(t, "failed", TurnFailed.String())
	assert.Equal(t, fmt.Sprintf("TurnState(%d)", 9), TurnState(9).String())
}

func TestIsErrorEntry(t *testing.T) {
	assert.True(t, IsErrorEntry(ConnectivityMessage))
	assert.True(t, IsErrorEntry(ServerErrorMessage("quota exceeded")))
	assert.False(t, IsErrorEntry("Errors are values."))
	assert.False(t, IsErrorEntry(""))
}
