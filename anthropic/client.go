// Package anthropic implements canvas.Generator on the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/internal/logging"
)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-sonnet-4-20250514"
	apiVersion     = "2023-06-01"

	expandMaxTokens  = 1024
	personaMaxTokens = 512
)

var (
	ErrMissingInput  = errors.New("anthropic: missing prompt or API key")
	ErrEmptyResponse = errors.New("anthropic: no text response from model")
	ErrBadResponse   = errors.New("anthropic: unreadable response body")
)

// APIError is a non-2xx answer from the API. Its text carries the status code
// so callers can recognise credential failures.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic: status %d %s: %s", e.Status, e.Type, e.Message)
}

// StatusCode returns the HTTP status. canvas.IsCredentialError relies on it.
func (e *APIError) StatusCode() int {
	return e.Status
}

// Client calls the Messages API. The API key travels with every call
// because it belongs to the user's settings, not to the client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithModel selects the model.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ canvas.Generator = (*Client)(nil)

// Expand asks for four concepts branching from prompt, in slot order.
func (c *Client) Expand(ctx context.Context, prompt, credential string) ([]canvas.Concept, error) {
	if prompt == "" || credential == "" {
		return nil, ErrMissingInput
	}
	text, err := c.complete(ctx, credential, messageRequest{
		MaxTokens: expandMaxTokens,
		System:    expandSystemPrompt(prompt),
		Messages:  []message{{Role: "user", Content: expandUserMessage(prompt)}},
	})
	if err != nil {
		return nil, err
	}
	concepts, err := parseConcepts(text)
	if err != nil {
		c.logParseFailure("expand", text, err)
		return nil, err
	}
	return concepts, nil
}

// Persona asks p for a single reply to prompt.
func (c *Client) Persona(ctx context.Context, prompt, credential string, p canvas.Persona) (canvas.Reply, error) {
	if prompt == "" || credential == "" {
		return canvas.Reply{}, ErrMissingInput
	}
	text, err := c.complete(ctx, credential, messageRequest{
		MaxTokens: personaMaxTokens,
		System:    personaSystemPrompt(p, prompt),
		Messages:  []message{{Role: "user", Content: personaUserMessage(p, prompt)}},
	})
	if err != nil {
		return canvas.Reply{}, err
	}
	reply, err := parseReply(text)
	if err != nil {
		c.logParseFailure("persona", text, err)
		return canvas.Reply{}, err
	}
	return reply, nil
}

// logParseFailure records why the model's text could not be used. The
// returned error carries none of this.
func (c *Client) logParseFailure(call, text string, err error) {
	var oe *outputError
	if errors.As(err, &oe) {
		err = oe.Cause()
	}
	if len(text) > 200 {
		text = text[:200]
	}
	c.logger.Debug("unparseable model output", "call", call, "err", err, "text", text)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// complete sends one request and returns the first text block.
func (c *Client) complete(ctx context.Context, credential string, req messageRequest) (string, error) {
	req.Model = c.model
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("anthropic: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", credential)
	httpReq.Header.Set("anthropic-version", apiVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("anthropic: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("anthropic: read response: %w", err)
	}
	c.logger.Debug("messages call finished", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Error.Message != "" {
			apiErr.Type = er.Error.Type
			apiErr.Message = er.Error.Message
		}
		return "", apiErr
	}

	var mr messageResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		c.logger.Debug("undecodable response body", "status", resp.StatusCode, "err", err)
		return "", ErrBadResponse
	}
	for _, block := range mr.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}
