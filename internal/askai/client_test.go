package askai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/storage"
)

func serve(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestAskSendsPrompt(t *testing.T) {
	var got AskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ask-ai", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"answer":"Paris"}`))
	}))
	defer srv.Close()

	answer, err := NewClient(srv.URL+"/", 0).Ask(context.Background(), "Capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris", answer)
	assert.Equal(t, "Capital of France?", got.Prompt)
}

func TestAskAnswerWinsOverError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "warning next to answer", status: 200, body: `{"answer":"Hi","error":"partial quota warning"}`},
		{name: "created", status: 201, body: `{"error":"ignored","answer":"Hi"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, err := serve(t, tt.status, tt.body).Ask(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, "Hi", answer)
		})
	}
}

func TestAskServerError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "generation failed", status: 500, body: `{"error":"AI failed to respond","details":"quota"}`, want: "AI failed to respond"},
		{name: "empty prompt", status: 400, body: `{"error":"Prompt is required"}`, want: "Prompt is required"},
		{name: "error with 200", status: 200, body: `{"error":"odd but reported"}`, want: "odd but reported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := serve(t, tt.status, tt.body).Ask(context.Background(), "hi")

			var serverErr *chat.ServerError
			require.True(t, errors.As(err, &serverErr), "got %v", err)
			assert.Equal(t, tt.want, serverErr.Message)
			assert.Equal(t, tt.status, serverErr.Status)
		})
	}
}

func TestAskMalformed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "html", status: 502, body: `<html>Bad Gateway</html>`},
		{name: "empty object", status: 200, body: `{}`},
		{name: "empty answer", status: 200, body: `{"answer":""}`},
		{name: "answer on failure status", status: 503, body: `{"answer":"late"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := serve(t, tt.status, tt.body).Ask(context.Background(), "hi")

			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
			var serverErr *chat.ServerError
			assert.False(t, errors.As(err, &serverErr))
		})
	}
}

func TestAskUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Ask(context.Background(), "hi")
	assert.True(t, errors.Is(err, ErrUnreachable), "got %v", err)
}

func TestAskCanceled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(srv.URL, 0).Ask(ctx, "hi")
	assert.True(t, errors.Is(err, ErrUnreachable), "got %v", err)
}

func TestClientFeedsCoordinator(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "answer", status: 200, body: `{"answer":"Paris"}`, want: "Paris"},
		{name: "answer with error text", status: 200, body: `{"answer":"Hi","error":"partial quota warning"}`, want: "Hi"},
		{name: "error status with answer", status: 500, body: `{"answer":"late","error":"AI failed to respond"}`, want: "Error: AI failed to respond"},
		{name: "server error", status: 500, body: `{"error":"AI failed to respond"}`, want: "Error: AI failed to respond"},
		{name: "malformed", status: 200, body: `nope`, want: chat.ConnectivityMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := chat.NewManager(chat.NewKVPersister(storage.NewMemory()), serve(t, tt.status, tt.body))
			m.Submit(context.Background(), "Capital of France?")

			msgs := m.CurrentMessages()
			require.Len(t, msgs, 2)
			assert.Equal(t, chat.AssistantMessage(tt.want), msgs[1])
		})
	}
}

func TestHealth(t *testing.T) {
	status, err := serve(t, 200, `{"status":"Server is running!"}`).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Server is running!", status)

	_, err = serve(t, 503, ``).Health(context.Background())
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestDefaultServerURL(t *testing.T) {
	assert.Equal(t, DefaultServerURL, NewClient("", 0).BaseURL())
}
