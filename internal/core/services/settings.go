package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider          = "llm.provider"
	keyLLMModel             = "llm.model"
	keyLLMBaseURL           = "llm.base_url"
	keyLLMAPIKey            = "llm.api_key"
	keyLLMTimeout           = "llm.timeout_seconds"
	keyLLMRequestsPerMinute = "llm.requests_per_minute"
	keyChunker              = "pipeline.chunker"
	keyChunkSize            = "pipeline.chunk_size"
	keyOverlap              = "pipeline.overlap"
	keyConversational       = "pipeline.conversational"
	keyHistoryTurns         = "pipeline.history_turns"
	keyConcurrency          = "pipeline.concurrency"
	keyCallTimeout          = "pipeline.call_timeout_seconds"
	keyOutputFormat         = "output.format"
	keyOutputDir            = "output.dir"
	keySchemaPath           = "schema.path"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
)

// settingKinds lists every settable key with the type stored in the config file.
var settingKinds = map[string]valueKind{
	keyLLMProvider:          kindString,
	keyLLMModel:             kindString,
	keyLLMBaseURL:           kindString,
	keyLLMAPIKey:            kindString,
	keyLLMTimeout:           kindInt,
	keyLLMRequestsPerMinute: kindInt,
	keyChunker:              kindString,
	keyChunkSize:            kindInt,
	keyOverlap:              kindInt,
	keyConversational:       kindBool,
	keyHistoryTurns:         kindInt,
	keyConcurrency:          kindInt,
	keyCallTimeout:          kindInt,
	keyOutputFormat:         kindString,
	keyOutputDir:            kindString,
	keySchemaPath:           kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)
	model := s.configStore.GetString(keyLLMModel)
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}
	baseURL := s.configStore.GetString(keyLLMBaseURL)
	if baseURL == "" && provider.IsLocal() {
		baseURL = domain.DefaultOllamaURL
	}

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           baseURL,
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			TimeoutSeconds:    s.getInt(keyLLMTimeout, defaults.LLM.TimeoutSeconds),
			RequestsPerMinute: s.getInt(keyLLMRequestsPerMinute, defaults.LLM.RequestsPerMinute),
		},
		Pipeline: domain.PipelineSettings{
			Chunker:            s.getString(keyChunker, defaults.Pipeline.Chunker),
			ChunkSize:          s.getInt(keyChunkSize, defaults.Pipeline.ChunkSize),
			Overlap:            s.getInt(keyOverlap, defaults.Pipeline.Overlap),
			Conversational:     s.getBool(keyConversational, defaults.Pipeline.Conversational),
			HistoryTurns:       s.getInt(keyHistoryTurns, defaults.Pipeline.HistoryTurns),
			Concurrency:        s.getInt(keyConcurrency, defaults.Pipeline.Concurrency),
			CallTimeoutSeconds: s.getInt(keyCallTimeout, defaults.Pipeline.CallTimeoutSeconds),
		},
		Output: domain.OutputSettings{
			Format: s.getOutputFormat(defaults.Output.Format),
			Dir:    s.getString(keyOutputDir, defaults.Output.Dir),
		},
		SchemaPath: s.configStore.GetString(keySchemaPath),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTimeout, settings.LLM.TimeoutSeconds},
		{keyLLMRequestsPerMinute, settings.LLM.RequestsPerMinute},
		{keyChunker, settings.Pipeline.Chunker},
		{keyChunkSize, settings.Pipeline.ChunkSize},
		{keyOverlap, settings.Pipeline.Overlap},
		{keyConversational, settings.Pipeline.Conversational},
		{keyHistoryTurns, settings.Pipeline.HistoryTurns},
		{keyConcurrency, settings.Pipeline.Concurrency},
		{keyCallTimeout, settings.Pipeline.CallTimeoutSeconds},
		{keyOutputFormat, settings.Output.Format.String()},
		{keyOutputDir, settings.Output.Dir},
		{keySchemaPath, settings.SchemaPath},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// An empty key keeps the stored one
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// Set updates one setting from its text form.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		typed = b
	default:
		typed = strings.TrimSpace(value)
	}

	switch key {
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, value)
		}
	case keyOutputFormat:
		if !domain.OutputFormat(value).IsValid() {
			return fmt.Errorf("%w: invalid output format: %s", domain.ErrInvalidInput, value)
		}
	case keyChunkSize:
		if typed.(int) == 0 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	}

	return s.configStore.Set(key, typed)
}

// Keys returns all settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset restores default settings and clears the stored API key.
func (s *SettingsService) Reset() error {
	defaults := domain.DefaultAppSettings()
	if err := s.Save(&defaults); err != nil {
		return err
	}
	return s.configStore.Delete(keyLLMAPIKey)
}

// Validate checks if current settings are usable for extraction.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %s requires an API key", domain.ErrInvalidInput, settings.LLM.Provider)
	}
	if err := driven.ValidateChunking(settings.Pipeline.ChunkSize, settings.Pipeline.Overlap); err != nil {
		return err
	}
	if !settings.Output.Format.IsValid() {
		return fmt.Errorf("%w: invalid output format: %s", domain.ErrInvalidInput, settings.Output.Format)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt treats a stored zero as a value, so overlap and rate limits can be disabled.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getOutputFormat(defaultVal domain.OutputFormat) domain.OutputFormat {
	val := s.configStore.GetString(keyOutputFormat)
	if val == "" {
		return defaultVal
	}
	format := domain.OutputFormat(val)
	if !format.IsValid() {
		return defaultVal
	}
	return format
}
