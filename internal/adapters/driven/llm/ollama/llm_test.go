package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	s := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultBaseURL, s.baseURL)
	assert.Equal(t, DefaultLLMModel, s.ModelName())
	assert.Equal(t, DefaultLLMTimeout, s.client.Timeout)
}

func TestLLMService_Chat(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message": {"role": "assistant", "content": "{\"valves\": []}"}, "done": true}`))
	}))
	defer server.Close()

	s := NewLLMService(LLMConfig{BaseURL: server.URL + "/", Model: "qwen2.5"})
	reply, err := s.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "extract"},
		{Role: driven.RoleUser, Content: "Gate valve GV-1"},
	}, driven.ChatOptions{
		MaxTokens: 256,
		Format:    json.RawMessage(`{"type":"object"}`),
	})

	require.NoError(t, err)
	assert.Equal(t, `{"valves": []}`, reply)
	assert.Equal(t, "qwen2.5", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, map[string]any{"type": "object"}, got["format"])
	opts := got["options"].(map[string]any)
	assert.Equal(t, 256.0, opts["num_predict"])
	assert.Equal(t, 0.0, opts["temperature"])
	assert.Len(t, got["messages"], 2)
}

func TestLLMService_Chat_NoFormat(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message": {"content": "ok"}}`))
	}))
	defer server.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Chat(context.Background(), nil, driven.ChatOptions{})

	require.NoError(t, err)
	_, hasFormat := got["format"]
	assert.False(t, hasFormat)
}

func TestLLMService_Chat_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model 'nope' not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Chat(context.Background(), nil, driven.ChatOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "not found")
}

func TestLLMService_Chat_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Chat(ctx, nil, driven.ChatOptions{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLLMService_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"models": [{"name": "llama3.2:latest"}, {"name": "mistral:7b"}]}`))
	}))
	defer server.Close()

	models, err := NewLLMService(LLMConfig{BaseURL: server.URL}).ListModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:latest", "mistral:7b"}, models)
}

func TestLLMService_Ping(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer up.Close()
	assert.NoError(t, NewLLMService(LLMConfig{BaseURL: up.URL}).Ping(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	err := NewLLMService(LLMConfig{BaseURL: down.URL}).Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama: ping failed")
}

func TestLLMService_Close(t *testing.T) {
	assert.NoError(t, NewLLMService(LLMConfig{}).Close())
}
