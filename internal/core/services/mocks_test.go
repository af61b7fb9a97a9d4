package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// mockLLM answers Chat with a caller-supplied function and records every request.
type mockLLM struct {
	mu      sync.Mutex
	chat    func(ctx context.Context, messages []driven.ChatMessage) (string, error)
	pingErr error
	models  []string
	calls   [][]driven.ChatMessage
	options []driven.ChatOptions
	closed  bool
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]driven.ChatMessage(nil), messages...))
	m.options = append(m.options, opts)
	m.mu.Unlock()
	if m.chat == nil {
		return `{"valves": []}`, nil
	}
	return m.chat(ctx, messages)
}

func (m *mockLLM) ListModels(_ context.Context) ([]string, error) {
	if m.pingErr != nil {
		return nil, m.pingErr
	}
	return m.models, nil
}

func (m *mockLLM) ModelName() string {
	return "mock-model"
}

func (m *mockLLM) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockLLM) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockLLMFactory hands out a fixed LLM.
type mockLLMFactory struct {
	llm      *mockLLM
	err      error
	settings *domain.LLMSettings
}

func (f *mockLLMFactory) Create(settings *domain.LLMSettings) (driven.LLMService, error) {
	f.settings = settings
	if f.err != nil {
		return nil, f.err
	}
	return f.llm, nil
}

// fakeShaper accepts {"<collection>": [...]} or a bare array.
type fakeShaper struct {
	hintErr error
}

func (s *fakeShaper) Hint(schema *domain.RecordSchema) (json.RawMessage, error) {
	if s.hintErr != nil {
		return nil, s.hintErr
	}
	return json.RawMessage(fmt.Sprintf(`{"type":"object","required":[%q]}`, schema.Collection)), nil
}

func (s *fakeShaper) Items(schema *domain.RecordSchema, payload []byte) ([]map[string]any, error) {
	var list []map[string]any
	if err := json.Unmarshal(payload, &list); err == nil {
		return list, nil
	}
	var wrapped map[string][]map[string]any
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	items, ok := wrapped[schema.Collection]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", domain.ErrMalformedResponse, schema.Collection)
	}
	return items, nil
}

// recordingReporter keeps every state and progress event.
type recordingReporter struct {
	mu     sync.Mutex
	states []domain.RunState
	events []domain.ProgressEvent
}

func (r *recordingReporter) OnState(s domain.RunState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recordingReporter) OnProgress(e domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// mockAIConfigValidator records validation calls.
type mockAIConfigValidator struct {
	err    error
	called bool
}

func (m *mockAIConfigValidator) ValidateLLM(_ *domain.LLMSettings) error {
	m.called = true
	return m.err
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
	reloads int
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() { m.reloads++ }

// valveReply renders a model reply holding one gate valve per serial ID.
func valveReply(ids ...string) string {
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = fmt.Sprintf(`{"valve_type": "gate", "serial_id": %q, "width": "%d in"}`, id, 10+i)
	}
	return `{"valves": [` + strings.Join(items, ", ") + `]}`
}

// lastUser returns the content of the final user message.
func lastUser(messages []driven.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == driven.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
