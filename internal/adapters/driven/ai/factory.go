// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/valvex/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/valvex/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/valvex/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/valvex/internal/adapters/driven/llm/ratelimit"
	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.LLMFactory = (*Factory)(nil)

// Factory creates LLM services from provider settings.
type Factory struct{}

// NewFactory creates a new LLM factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns a service for settings, rate limited when configured.
func (f *Factory) Create(settings *domain.LLMSettings) (driven.LLMService, error) {
	return CreateLLMService(settings)
}

// CreateLLMService creates the appropriate LLM service based on settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no LLM settings", domain.ErrInvalidInput)
	}
	if !settings.IsConfigured() {
		if settings.Provider.RequiresAPIKey() {
			return nil, fmt.Errorf("%w: %s requires an API key. Run 'valvex settings set llm.api_key <key>'",
				domain.ErrInvalidInput, settings.Provider)
		}
		return nil, fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, settings.Provider)
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaLLM(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		svc, err = createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return ratelimit.Wrap(svc, settings.RequestsPerMinute), nil
}

func timeout(settings *domain.LLMSettings) time.Duration {
	return time.Duration(settings.TimeoutSeconds) * time.Second
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: timeout(settings),
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: timeout(settings),
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: timeout(settings),
	})
}
