package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/askai"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/provider"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/storage"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func newTestServer(gen Generator) *Server {
	return New(gen, Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		Logger:         zerolog.Nop(),
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	require.NoError(t, s.handleHealth(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"Server is running!"}`, rec.Body.String())
}

func TestHandleAskAI_Answer(t *testing.T) {
	var got string
	s := newTestServer(generatorFunc(func(_ context.Context, prompt string) (string, error) {
		got = prompt
		return "Paris", nil
	}))

	rec := do(t, s, http.MethodPost, "/ask-ai", `{"prompt":"Capital of France?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"Paris"}`, rec.Body.String())
	assert.Equal(t, "Capital of France?", got)
}

func TestHandleAskAI_PromptRequired(t *testing.T) {
	calls := 0
	s := newTestServer(generatorFunc(func(context.Context, string) (string, error) {
		calls++
		return "unused", nil
	}))

	for _, body := range []string{`{}`, `{"prompt":""}`, `{"prompt":"   "}`, `{"prompt":`} {
		rec := do(t, s, http.MethodPost, "/ask-ai", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Prompt is required"}`, rec.Body.String(), body)
	}
	assert.Equal(t, 0, calls)
}

func TestHandleAskAI_GenerationFails(t *testing.T) {
	s := newTestServer(generatorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	}))

	rec := do(t, s, http.MethodPost, "/ask-ai", `{"prompt":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"AI failed to respond","details":"quota exceeded"}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	s := newTestServer(generatorFunc(func(context.Context, string) (string, error) { return "ok", nil }))

	req := httptest.NewRequest(http.MethodOptions, "/ask-ai", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPost)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderOrigin, "http://evil.example")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(generatorFunc(func(_ context.Context, prompt string) (string, error) {
		if prompt == "fail" {
			return "", errors.New("boom")
		}
		return "ok", nil
	}))

	do(t, s, http.MethodPost, "/ask-ai", `{"prompt":"hi"}`)
	do(t, s, http.MethodPost, "/ask-ai", `{"prompt":"fail"}`)
	do(t, s, http.MethodPost, "/ask-ai", `{}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `askai_generation_total{outcome="success"} 1`)
	assert.Contains(t, body, `askai_generation_total{outcome="failure"} 1`)
	assert.Contains(t, body, `askai_generation_total{outcome="rejected"} 1`)
	assert.Contains(t, body, `askai_http_requests_total{method="POST",route="/ask-ai",status="200"} 1`)
	assert.Contains(t, body, `askai_http_requests_total{method="POST",route="/ask-ai",status="500"} 1`)
}

func TestRecoverFromPanic(t *testing.T) {
	s := newTestServer(generatorFunc(func(context.Context, string) (string, error) {
		panic("generator exploded")
	}))

	rec := do(t, s, http.MethodPost, "/ask-ai", `{"prompt":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `askai_http_requests_total{method="POST",route="/ask-ai",status="500"} 1`)
}

// scriptedProvider streams a fixed answer.
type scriptedProvider struct{ answer string }

func (p scriptedProvider) Name() string         { return "scripted" }
func (p scriptedProvider) DefaultModel() string { return "test" }
func (p scriptedProvider) Chat(context.Context, *provider.ChatRequest) (<-chan provider.Event, error) {
	ch := make(chan provider.Event, 2)
	ch <- provider.Event{Type: provider.EventTextDelta, TextDelta: p.answer}
	ch <- provider.Event{Type: provider.EventDone}
	close(ch)
	return ch, nil
}

// A chat manager talking to a live relay records the relay's answer.
func TestRelayEndToEnd(t *testing.T) {
	s := newTestServer(ProviderGenerator{Provider: scriptedProvider{answer: "Goroutines are cheap threads."}})
	srv := httptest.NewServer(s)
	defer srv.Close()

	client := askai.NewClient(srv.URL, 5*time.Second)
	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Server is running!", status)

	m := chat.NewManager(chat.NewKVPersister(storage.NewMemory()), client)
	m.Submit(context.Background(), "What is a goroutine?")
	m.Submit(context.Background(), "  ")

	msgs := m.CurrentMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.AssistantMessage("Goroutines are cheap threads."), msgs[1])
}
