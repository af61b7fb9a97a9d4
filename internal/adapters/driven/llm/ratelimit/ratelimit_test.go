package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

type stubLLM struct {
	chats  int
	pings  int
	closed bool
}

func (s *stubLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	s.chats++
	return "ok", nil
}

func (s *stubLLM) ListModels(context.Context) ([]string, error) {
	return []string{"m"}, nil
}

func (s *stubLLM) ModelName() string { return "stub" }

func (s *stubLLM) Ping(context.Context) error {
	s.pings++
	return nil
}

func (s *stubLLM) Close() error {
	s.closed = true
	return nil
}

func TestWrap_ZeroRateReturnsInner(t *testing.T) {
	inner := &stubLLM{}
	assert.Same(t, driven.LLMService(inner), Wrap(inner, 0))
	assert.Same(t, driven.LLMService(inner), Wrap(inner, -5))
}

func TestWrap_Forwards(t *testing.T) {
	inner := &stubLLM{}
	svc := Wrap(inner, 600)

	reply, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)

	models, err := svc.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, models)

	assert.Equal(t, "stub", svc.ModelName())
	require.NoError(t, svc.Ping(context.Background()))
	require.NoError(t, svc.Close())
	assert.Equal(t, 1, inner.chats)
	assert.Equal(t, 1, inner.pings)
	assert.True(t, inner.closed)
}

func TestWrap_WaitHonoursContext(t *testing.T) {
	inner := &stubLLM{}
	// One request per minute: the first call takes the only token.
	svc := Wrap(inner, 1)

	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.Chat(ctx, nil, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, 1, inner.chats)
}

func TestWrap_PingDoesNotConsume(t *testing.T) {
	inner := &stubLLM{}
	svc := Wrap(inner, 1)

	for range 3 {
		require.NoError(t, svc.Ping(context.Background()))
	}
	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)
}
