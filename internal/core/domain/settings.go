package domain

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API or any compatible server.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// OutputFormat selects how a result set is persisted.
type OutputFormat string

// Available output formats.
const (
	// OutputJSON writes a JSON document with run metadata.
	OutputJSON OutputFormat = "json"

	// OutputTabular writes a spreadsheet with one row per record.
	OutputTabular OutputFormat = "tabular"
)

// IsValid returns true if the output format is recognised.
func (f OutputFormat) IsValid() bool {
	return f == OutputJSON || f == OutputTabular
}

// String returns the string representation.
func (f OutputFormat) String() string {
	return string(f)
}

// Extension returns the file extension written for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case OutputTabular:
		return ".xlsx"
	default:
		return ".json"
	}
}

// Description returns a human-readable description of the format.
func (f OutputFormat) Description() string {
	switch f {
	case OutputJSON:
		return "JSON document"
	case OutputTabular:
		return "Excel spreadsheet"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// TimeoutSeconds bounds a whole HTTP exchange with the provider.
	TimeoutSeconds int

	// RequestsPerMinute limits request rate. Zero means unlimited.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// PipelineSettings holds chunking and extraction configuration.
type PipelineSettings struct {
	// Chunker is the registered chunking strategy name.
	Chunker string

	// ChunkSize is the maximum chunk length in bytes.
	ChunkSize int

	// Overlap is the number of bytes shared by consecutive chunks.
	Overlap int

	// Conversational feeds earlier exchanges into later requests.
	Conversational bool

	// HistoryTurns bounds the exchanges kept in conversational mode.
	HistoryTurns int

	// Concurrency is the number of chunks extracted at once.
	Concurrency int

	// CallTimeoutSeconds bounds one extraction call. Zero disables the limit.
	CallTimeoutSeconds int
}

// OutputSettings holds result persistence configuration.
type OutputSettings struct {
	// Format is the default output format.
	Format OutputFormat

	// Dir is the directory results are written to.
	Dir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Pipeline holds extraction pipeline settings.
	Pipeline PipelineSettings

	// Output holds persistence settings.
	Output OutputSettings

	// SchemaPath points to a schema file. Empty selects the built-in valve schema.
	SchemaPath string
}

// Default values for settings.
const (
	DefaultOllamaURL          = "http://localhost:11434"
	DefaultChunker            = "boundary"
	DefaultChunkSize          = 2000
	DefaultOverlap            = 200
	DefaultHistoryTurns       = 4
	DefaultTimeoutSeconds     = 120
	DefaultCallTimeoutSeconds = 90
)

// DefaultAppSettings returns settings with sensible defaults.
// The local Ollama provider is configured out of the box.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:       AIProviderOllama,
			Model:          DefaultLLMModels()[AIProviderOllama],
			BaseURL:        DefaultOllamaURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Pipeline: PipelineSettings{
			Chunker:            DefaultChunker,
			ChunkSize:          DefaultChunkSize,
			Overlap:            DefaultOverlap,
			HistoryTurns:       DefaultHistoryTurns,
			Concurrency:        1,
			CallTimeoutSeconds: DefaultCallTimeoutSeconds,
		},
		Output: OutputSettings{
			Format: OutputJSON,
			Dir:    ".",
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllOutputFormats returns all available output formats.
func AllOutputFormats() []OutputFormat {
	return []OutputFormat{OutputJSON, OutputTabular}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
