package driving

import "github.com/custodia-labs/valvex/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates one setting by key (e.g., "pipeline.chunk_size") from its text form.
	Set(key, value string) error

	// Keys returns all settable keys.
	Keys() []string

	// Reset restores default settings.
	Reset() error

	// Validate checks if current settings are usable for extraction.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
