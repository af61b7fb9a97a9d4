package ai

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// pingTimeout bounds each request made while validating settings.
const pingTimeout = 5 * time.Second

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks LLM settings against the live provider.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return validateLLM(config, v.timeout)
}

// ValidateLLMConfig creates a service for settings and checks it is reachable.
// For Ollama the model must also be pulled, since a missing model only shows
// up later as a failure on every chunk.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	return validateLLM(settings, pingTimeout)
}

func validateLLM(settings *domain.LLMSettings, timeout time.Duration) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}

	if settings.Provider != domain.AIProviderOllama {
		return nil
	}
	models, err := svc.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	if !hasModel(models, svc.ModelName()) {
		return fmt.Errorf("%w: model %q is not pulled (available: %s)",
			domain.ErrModelUnavailable, svc.ModelName(), strings.Join(models, ", "))
	}
	return nil
}

// hasModel reports whether name is listed, treating "m" and "m:latest" as the same model.
func hasModel(models []string, name string) bool {
	return slices.ContainsFunc(models, func(m string) bool {
		return m == name || strings.TrimSuffix(m, ":latest") == name
	})
}
