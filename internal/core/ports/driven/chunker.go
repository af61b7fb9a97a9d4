package driven

import (
	"fmt"
	"iter"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// Chunker splits a document into overlapping windows.
type Chunker interface {
	// Name returns the strategy name for logging and configuration.
	Name() string

	// Split returns the chunks of doc in order. The sequence is lazy and
	// may be ranged over more than once, yielding the same chunks each time.
	// Callers must check parameters with ValidateChunking first.
	Split(doc *domain.Document, maxSize, overlap int) iter.Seq[domain.Chunk]
}

// ChunkerBuilder creates a Chunker from generic configuration.
type ChunkerBuilder func(cfg map[string]any) (Chunker, error)

// ChunkerRegistry builds chunkers by strategy name.
type ChunkerRegistry interface {
	// Build returns the chunker registered under name.
	// Returns ErrUnsupportedType if the name is unknown.
	Build(name string, cfg map[string]any) (Chunker, error)

	// Register adds a builder for the given strategy name.
	Register(name string, builder ChunkerBuilder)

	// Names returns all registered strategy names.
	Names() []string
}

// ValidateChunking checks chunk parameters: maxSize > 0 and 0 <= overlap < maxSize.
func ValidateChunking(maxSize, overlap int) error {
	if maxSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", domain.ErrInvalidInput, maxSize, overlap)
	}
	return nil
}
