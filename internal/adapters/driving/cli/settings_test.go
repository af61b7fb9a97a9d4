package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	rootCmd.SetIn(strings.NewReader(input))
	defer rootCmd.SetIn(nil)
	return executeCmd(t, args...)
}

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range settingsCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"show", "set", "keys", "reset", "wizard", "llm"} {
		assert.Contains(t, names, want)
	}
}

func TestSettingsShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCmd(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Provider: Ollama (local)")
	assert.Contains(t, out, "Model: llama3.2")
	assert.Contains(t, out, "Base URL: http://localhost:11434")
	assert.Contains(t, out, "Chunk size: 2000")
	assert.Contains(t, out, "Overlap: 200")
	assert.Contains(t, out, "Conversational: no")
	assert.Contains(t, out, "Format: JSON document")
	assert.Contains(t, out, "Schema: (built-in valve schema)")
	assert.Contains(t, out, "Configuration is valid.")
	assert.NotContains(t, out, "API Key")
}

func TestSettingsShowCmd_MasksKeyAndWarns(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.Settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-4o-mini",
		APIKey:   "sk-proj-1234567890abcdefghijklmnop",
	}
	mocks.settings.ValidateErr = errors.New("chunk overlap too large")

	out, err := executeCmd(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "API Key: sk-p...mnop")
	assert.NotContains(t, out, "1234567890")
	assert.Contains(t, out, "Warning: chunk overlap too large")
	assert.Contains(t, out, "valvex settings wizard")
}

func TestSettingsSetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCmd(t, "settings", "set", "pipeline.chunk_size", "3000")

	require.NoError(t, err)
	assert.Equal(t, "3000", mocks.settings.SetCalls["pipeline.chunk_size"])
	assert.Contains(t, out, "Set pipeline.chunk_size = 3000")
	assert.Equal(t, 0, mocks.settings.ValidateCalls)
}

func TestSettingsSetCmd_ValidatesLLMKeys(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCmd(t, "settings", "set", "llm.api_key", "sk-1234567890abcd")

	require.NoError(t, err)
	assert.Contains(t, out, "Set llm.api_key = sk-1...abcd")
	assert.Contains(t, out, "Validating configuration... OK")
	assert.Equal(t, 1, mocks.settings.ValidateCalls)
}

func TestSettingsSetCmd_ValidationFailureKeepsValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.ValidateLLM = errors.New("model unavailable")

	out, err := executeCmd(t, "settings", "set", "llm.model", "mistral")

	require.NoError(t, err)
	assert.Equal(t, "mistral", mocks.settings.SetCalls["llm.model"])
	assert.Contains(t, out, "FAILED: model unavailable")
	assert.Contains(t, out, "The setting was saved")
}

func TestSettingsSetCmd_NoValidate(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCmd(t, "settings", "set", "llm.model", "mistral", "--no-validate")

	require.NoError(t, err)
	assert.Equal(t, 0, mocks.settings.ValidateCalls)
}

func TestSettingsSetCmd_Error(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.SetErr = domain.ErrInvalidInput

	_, err := executeCmd(t, "settings", "set", "nope", "1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsKeysCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCmd(t, "settings", "keys")

	require.NoError(t, err)
	assert.Equal(t, "llm.model\nllm.provider\npipeline.chunk_size\n", out)
}

func TestSettingsResetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCmd(t, "settings", "reset")

	require.NoError(t, err)
	assert.True(t, mocks.settings.ResetCalled)
	assert.Contains(t, out, "Settings restored to defaults.")
}

func TestSettingsLLMCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	// anthropic, default model, default endpoint, key
	out, err := executeWithInput(t, "3\n\n\nsk-ant-1234567890\n", "settings", "llm")

	require.NoError(t, err)
	llm := mocks.settings.Settings.LLM
	assert.Equal(t, domain.AIProviderAnthropic, llm.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], llm.Model)
	assert.Empty(t, llm.BaseURL)
	assert.Equal(t, "sk-ant-1234567890", llm.APIKey)
	assert.Contains(t, out, "LLM provider configured: Anthropic (cloud)")
}

func TestSettingsLLMCmd_MissingKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput(t, "2\n\n\n\n", "settings", "llm")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
	assert.Equal(t, domain.AIProviderOllama, mocks.settings.Settings.LLM.Provider)
}

func TestSettingsLLMCmd_ValidationFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.ValidateLLM = errors.New("connection refused")

	out, err := executeWithInput(t, "1\nmistral\n\n", "settings", "llm")

	require.Error(t, err)
	assert.Contains(t, out, "FAILED: connection refused")
	assert.Equal(t, "mistral", mocks.settings.Settings.LLM.Model)
}

func TestSettingsWizardCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	input := strings.Join([]string{
		"2",                 // openai
		"",                  // default model
		"",                  // default endpoint
		"sk-1234567890abcd", // key
		"3000",              // chunk size
		"",                  // keep overlap
		"2",                 // concurrency
		"2",                 // tabular
		"out",               // directory
	}, "\n") + "\n"

	out, err := executeWithInput(t, input, "settings", "wizard")

	require.NoError(t, err)
	s := mocks.settings.Settings
	assert.Equal(t, domain.AIProviderOpenAI, s.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", s.LLM.Model)
	assert.Equal(t, "sk-1234567890abcd", s.LLM.APIKey)
	assert.Equal(t, 3000, s.Pipeline.ChunkSize)
	assert.Equal(t, domain.DefaultOverlap, s.Pipeline.Overlap)
	assert.Equal(t, 2, s.Pipeline.Concurrency)
	assert.Equal(t, domain.OutputTabular, s.Output.Format)
	assert.Equal(t, "out", s.Output.Dir)
	assert.Contains(t, out, "All settings are valid and saved.")
}

func TestReadPassword_FallsBackToLine(t *testing.T) {
	in := bytes.NewBufferString("secret\n")
	assert.Equal(t, "secret", readPassword(in, bufio.NewReader(in)))
}
