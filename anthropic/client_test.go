package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	APIKey    string
	Version   string
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    string `json:"system"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, text string, got *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
			got.APIKey = r.Header.Get("x-api-key")
			got.Version = r.Header.Get("anthropic-version")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(text))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": text}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Expand(t *testing.T) {
	var got capturedRequest
	srv := newServer(t, http.StatusOK, `Here: {"concepts":[
		{"type":"scenario","title":"S","content":"s"},
		{"type":"tech","title":"T","content":"t"},
		{"type":"visual","title":"V","content":"v"},
		{"type":"counter","title":"C","content":"c"}]}`, &got)

	c := anthropic.New(anthropic.WithBaseURL(srv.URL), anthropic.WithModel("test-model"))
	concepts, err := c.Expand(context.Background(), "idea", "sk-test")
	require.NoError(t, err)
	require.Len(t, concepts, canvas.SlotCount)
	assert.Equal(t, canvas.CategoryScenario, concepts[0].Category)

	assert.Equal(t, "sk-test", got.APIKey)
	assert.Equal(t, "2023-06-01", got.Version)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 1024, got.MaxTokens)
	assert.Contains(t, got.System, "English")
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, `"idea"`)
}

func TestClient_Persona(t *testing.T) {
	var got capturedRequest
	srv := newServer(t, http.StatusOK, `{"title":"Flip it","content":"• make it sound"}`, &got)

	critic, ok := canvas.PersonaByID(canvas.PersonaCritic)
	require.True(t, ok)

	c := anthropic.New(anthropic.WithBaseURL(srv.URL))
	reply, err := c.Persona(context.Background(), "아이디어", "sk-test", critic)
	require.NoError(t, err)
	assert.Equal(t, "Flip it", reply.Title)

	assert.Equal(t, 512, got.MaxTokens)
	assert.Contains(t, got.System, "The Critic - Art Critic/Curator")
	assert.Contains(t, got.System, "Korean")
	assert.Contains(t, got.Messages[0].Content, "As The Critic")
}

func TestClient_APIErrorIsCredentialFlavoured(t *testing.T) {
	srv := newServer(t, http.StatusUnauthorized,
		`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, nil)

	c := anthropic.New(anthropic.WithBaseURL(srv.URL))
	_, err := c.Expand(context.Background(), "idea", "bad")
	require.Error(t, err)

	var apiErr *anthropic.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "authentication_error", apiErr.Type)
	assert.True(t, canvas.IsCredentialError(err))
}

func TestClient_MalformedOutput(t *testing.T) {
	srv := newServer(t, http.StatusOK, "I cannot comply.", nil)

	c := anthropic.New(anthropic.WithBaseURL(srv.URL))
	_, err := c.Expand(context.Background(), "idea", "sk")
	assert.ErrorIs(t, err, anthropic.ErrMalformedOutput)
}

func TestClient_MalformedOutputIsNotACredentialError(t *testing.T) {
	srv := newServer(t, http.StatusOK, "Sure! {concepts: four ideas}", nil)

	c := anthropic.New(anthropic.WithBaseURL(srv.URL))
	_, err := c.Expand(context.Background(), "idea", "sk")
	require.ErrorIs(t, err, anthropic.ErrMalformedOutput)
	assert.False(t, canvas.IsCredentialError(err), "got %q", err)

	_, err = c.Persona(context.Background(), "idea", "sk", canvas.Persona{Name: "x"})
	require.ErrorIs(t, err, anthropic.ErrMalformedOutput)
	assert.False(t, canvas.IsCredentialError(err))
}

func TestClient_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": "invalid key shape"`))
	}))
	t.Cleanup(srv.Close)

	c := anthropic.New(anthropic.WithBaseURL(srv.URL))
	_, err := c.Expand(context.Background(), "idea", "sk")
	require.ErrorIs(t, err, anthropic.ErrBadResponse)
	assert.False(t, canvas.IsCredentialError(err))
}

func TestClient_BadRequestIsNotACredentialError(t *testing.T) {
	srv := newServer(t, http.StatusBadRequest,
		`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens: invalid key"}}`, nil)

	c := anthropic.New(anthropic.WithBaseURL(srv.URL))
	_, err := c.Expand(context.Background(), "idea", "sk")
	require.Error(t, err)
	assert.False(t, canvas.IsCredentialError(err))
}

func TestClient_MissingInput(t *testing.T) {
	c := anthropic.New()
	_, err := c.Expand(context.Background(), "", "sk")
	assert.ErrorIs(t, err, anthropic.ErrMissingInput)
	_, err = c.Persona(context.Background(), "idea", "", canvas.Persona{})
	assert.ErrorIs(t, err, anthropic.ErrMissingInput)
}
