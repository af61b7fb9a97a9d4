package readers

import (
	"github.com/custodia-labs/valvex/internal/readers/markdown"
	"github.com/custodia-labs/valvex/internal/readers/plaintext"
	"github.com/custodia-labs/valvex/internal/readers/xls"
	"github.com/custodia-labs/valvex/internal/readers/xlsx"
)

// RegisterDefaults registers all built-in readers with the source.
func RegisterDefaults(s *Source) {
	s.Register(plaintext.New())
	s.Register(markdown.New())
	s.Register(xlsx.New())
	s.Register(xls.New())
}

// NewDefaultSource returns a source holding the built-in readers.
func NewDefaultSource(opts ...Option) *Source {
	s := NewSource(opts...)
	RegisterDefaults(s)
	return s
}
