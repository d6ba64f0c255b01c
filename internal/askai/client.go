// Package askai is the HTTP client for the askai relay server.
package askai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
)

// DefaultServerURL is where `askai serve` listens unless configured otherwise.
const DefaultServerURL = "http://localhost:3001"

var (
	// ErrUnreachable means the request never produced an HTTP response.
	ErrUnreachable = errors.New("server unreachable")
	// ErrMalformed means the response carried neither an answer nor an error.
	ErrMalformed = errors.New("malformed server response")
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// AskRequest is the body of POST /ask-ai.
type AskRequest struct {
	Prompt string `json:"prompt"`
}

// AskResponse is every field POST /ask-ai may answer with.
type AskResponse struct {
	Answer  string `json:"answer,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// Client talks to a relay server. It implements chat.Asker.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ chat.Asker = (*Client)(nil)

// NewClient creates a client for baseURL. A zero timeout leaves request
// lifetime to the caller's context and the transport.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the server address requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Ask sends prompt to POST /ask-ai. A 2xx answer is returned as is; otherwise
// an error payload from the server is returned as *chat.ServerError; anything else that is not an answer wraps
// ErrUnreachable or ErrMalformed.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(AskRequest{Prompt: prompt})
	if err != nil {
		return "", errors.Wrap(err, "encode ask request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask-ai", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create ask request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(ErrUnreachable, "POST %s/ask-ai: %v", c.baseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", errors.Wrapf(ErrUnreachable, "read ask response: %v", err)
	}

	var out AskResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", errors.Wrapf(ErrMalformed, "status %d: %v", resp.StatusCode, err)
	}
	// An answer in a 2xx body wins over any error text next to it.
	if resp.StatusCode/100 == 2 && out.Answer != "" {
		return out.Answer, nil
	}
	if out.Error != "" {
		return "", &chat.ServerError{Status: resp.StatusCode, Message: out.Error}
	}
	return "", errors.Wrapf(ErrMalformed, "status %d with no answer", resp.StatusCode)
}

// Health calls GET /health and returns the reported status line.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "", errors.Wrap(err, "create health request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(ErrUnreachable, "GET %s/health: %v", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(ErrMalformed, "health status %d", resp.StatusCode)
	}
	var out HealthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
		return "", errors.Wrapf(ErrMalformed, "decode health: %v", err)
	}
	return out.Status, nil
}
