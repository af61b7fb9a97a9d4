package driven

import "github.com/custodia-labs/valvex/internal/core/domain"

// AIConfigValidator validates LLM provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI service.
type AIConfigValidator interface {
	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if configuration is valid.
	ValidateLLM(config *domain.LLMSettings) error
}
