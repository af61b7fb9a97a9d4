package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

func newTestService(t *testing.T, url string) *LLMService {
	t.Helper()
	s, err := NewLLMService(Config{APIKey: "sk-ant", BaseURL: url})
	require.NoError(t, err)
	return s
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	require.Error(t, err)

	s, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, s.baseURL)
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, DefaultTimeout, s.client.Timeout)
}

func TestLLMService_Chat(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"valves\":"},{"type":"text","text":"[]}"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	reply, err := newTestService(t, server.URL).Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "You extract valves."},
		{Role: driven.RoleUser, Content: "chunk one"},
		{Role: driven.RoleAssistant, Content: `{"valves":[]}`},
		{Role: driven.RoleUser, Content: "chunk two"},
	}, driven.ChatOptions{Format: json.RawMessage(`{"type":"object"}`)})

	require.NoError(t, err)
	assert.Equal(t, `{"valves":[]}`, reply)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.Contains(t, got.System, "You extract valves.")
	assert.Contains(t, got.System, `{"type":"object"}`)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
}

func TestLLMService_Chat_MaxTokensPassedThrough(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer server.Close()

	_, err := newTestService(t, server.URL).Chat(context.Background(),
		[]driven.ChatMessage{{Role: driven.RoleUser, Content: "hi"}},
		driven.ChatOptions{MaxTokens: 512})

	require.NoError(t, err)
	assert.Equal(t, 512, got.MaxTokens)
	assert.Empty(t, got.System)
}

func TestLLMService_Chat_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	_, err := newTestService(t, server.URL).Chat(context.Background(), nil, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestLLMService_Chat_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	_, err := newTestService(t, server.URL).Chat(context.Background(), nil, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "slow down")
}

func TestLLMService_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"id":"claude-3-5-haiku-latest","type":"model"}],"has_more":false}`))
	}))
	defer server.Close()

	models, err := newTestService(t, server.URL).ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"claude-3-5-haiku-latest"}, models)
}

func TestLLMService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	err := newTestService(t, server.URL).Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: ping failed")
}
