// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// LLMService is the model collaborator used for extraction.
// It accepts a conversation plus a response-shape hint and returns the
// model's text payload.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI and OpenAI-compatible servers (LM Studio, vLLM)
//   - Anthropic (Claude)
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ListModels returns the models the provider can serve.
	ListModels(ctx context.Context) ([]string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to verify connectivity before committing to a run.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// Format is a JSON Schema the reply should conform to.
	// Providers without structured output support fall back to prompting.
	Format json.RawMessage

	// FormatName names the schema for providers that require one.
	FormatName string
}

// LLMFactory creates LLM services from provider settings.
type LLMFactory interface {
	// Create returns a service for settings.
	// Returns ErrUnsupportedType for an unknown provider.
	Create(settings *domain.LLMSettings) (LLMService, error)
}
