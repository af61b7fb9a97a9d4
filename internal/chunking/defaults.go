package chunking

import (
	"github.com/custodia-labs/valvex/internal/chunking/splitter"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// RegisterDefaults registers all built-in chunkers with the registry.
// Call this during application initialisation to enable standard strategies.
func RegisterDefaults(r *Registry) {
	r.Register(splitter.NameBoundary, buildBoundary)
	r.Register(splitter.NameFixed, buildFixed)
}

// NewDefaultRegistry returns a registry holding the built-in chunkers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// buildBoundary creates a boundary-snapping chunker from generic config.
// Supported config keys:
//   - lookback_divisor (int): look back maxSize/divisor bytes for a boundary (default: 2)
func buildBoundary(cfg map[string]any) (driven.Chunker, error) {
	var opts []splitter.Option

	if cfg != nil {
		if d := getIntFromConfig(cfg, "lookback_divisor"); d > 0 {
			opts = append(opts, splitter.WithLookbackDivisor(d))
		}
	}

	return splitter.NewBoundary(opts...), nil
}

// buildFixed creates a fixed-window chunker. It takes no config.
func buildFixed(_ map[string]any) (driven.Chunker, error) {
	return splitter.NewFixed(), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
