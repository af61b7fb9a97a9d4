package driven

// ConfigStore holds the settings file as flat dot-notation keys
// ("llm.model", "pipeline.chunk_size").
type ConfigStore interface {
	// Get returns the raw value stored under key.
	Get(key string) (any, bool)

	// GetString returns the value as text, or "" when missing.
	GetString(key string) string

	// GetInt returns the value as an int, or 0 when missing or not numeric.
	GetInt(key string) int

	// GetBool returns the value as a bool, or false when missing.
	GetBool(key string) bool

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error

	// Delete removes a key. Removing a missing key is not an error.
	Delete(key string) error

	// Keys returns the stored keys in sorted order.
	Keys() []string

	// Save persists the current values.
	Save() error

	// Load re-reads the values from storage.
	Load() error

	// Path returns where the values are stored.
	Path() string
}
