package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media2text/internal/app/api"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-api-key")
	config.BaseURL = server.URL + "/v1"
	return NewGenerator(openai.NewClientWithConfig(config), "gpt-4o-mini")
}

func TestGenerator_Generate(t *testing.T) {
	var got openai.ChatCompletionRequest
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Clean text."}}]}`))
	})

	text, err := g.Generate(context.Background(), api.GenerateRequest{
		SystemPrompt: "Fix the transcript.",
		UserText:     "clean text",
		Temperature:  0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Clean text.", text)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "Fix the transcript.", got.Messages[0].Content)
	assert.Equal(t, "clean text", got.Messages[1].Content)
	assert.InDelta(t, 0.1, got.Temperature, 1e-6)
	assert.Equal(t, "gpt-4o-mini", got.Model)
}

func TestGenerator_GenerateEmptyChoice(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"   "}}]}`))
	})

	_, err := g.Generate(context.Background(), api.GenerateRequest{UserText: "x"})
	assert.True(t, errors.Is(err, api.ErrEmptyCandidate))
}

func TestGenerator_GenerateServerError(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})

	_, err := g.Generate(context.Background(), api.GenerateRequest{UserText: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrProviderFailure))
	assert.Equal(t, "openai:gpt-4o-mini", g.Name())
}
