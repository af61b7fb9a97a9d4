// Package splitter provides overlapping text window chunkers.
//
// Sizes and offsets are measured in bytes of the UTF-8 content. A cut never
// falls inside a rune; a single rune wider than the maximum forms its own chunk.
package splitter

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// Strategy names.
const (
	NameBoundary = "boundary"
	NameFixed    = "fixed"
)

// DefaultLookbackDivisor sets the boundary look-back window to maxSize/2.
const DefaultLookbackDivisor = 2

// Splitter walks a document in windows of at most maxSize bytes.
// It implements the driven.Chunker interface.
type Splitter struct {
	name            string
	snap            bool
	lookbackDivisor int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithLookbackDivisor sets the boundary look-back window to maxSize/d bytes.
func WithLookbackDivisor(d int) Option {
	return func(s *Splitter) {
		if d > 0 {
			s.lookbackDivisor = d
		}
	}
}

// NewBoundary creates a splitter that ends chunks on the latest paragraph
// break, line break or whitespace inside the look-back window.
func NewBoundary(opts ...Option) *Splitter {
	s := &Splitter{
		name:            NameBoundary,
		snap:            true,
		lookbackDivisor: DefaultLookbackDivisor,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewFixed creates a splitter that cuts at maxSize regardless of content.
func NewFixed() *Splitter {
	return &Splitter{name: NameFixed}
}

// Name returns the strategy name.
func (s *Splitter) Name() string {
	return s.name
}

// Split returns the chunks of doc. Ranging the sequence again restarts the walk.
func (s *Splitter) Split(doc *domain.Document, maxSize, overlap int) iter.Seq[domain.Chunk] {
	return func(yield func(domain.Chunk) bool) {
		text := doc.Content
		n := len(text)
		if n == 0 || maxSize <= 0 {
			return
		}

		offset, index := 0, 0
		for offset < n {
			end := offset + maxSize
			if end >= n {
				end = n
			} else {
				end = s.cut(text, offset, end, maxSize)
			}

			if !yield(domain.Chunk{Index: index, Offset: offset, Text: text[offset:end]}) {
				return
			}
			if end == n {
				return
			}

			next := end - overlap
			if next <= offset {
				next = offset + 1
			}
			for next < n && !utf8.RuneStart(text[next]) {
				next++
			}
			offset = next
			index++
		}
	}
}

// cut returns where a chunk starting at offset ends, given the candidate end
// limit < len(text).
func (s *Splitter) cut(text string, offset, limit, maxSize int) int {
	for limit > offset && !utf8.RuneStart(text[limit]) {
		limit--
	}
	if limit == offset {
		_, size := utf8.DecodeRuneInString(text[offset:])
		return offset + size
	}
	if !s.snap {
		return limit
	}

	floor := limit - maxSize/s.lookbackDivisor
	if floor <= offset {
		floor = offset + 1
	}
	if floor >= limit {
		return limit
	}

	window := text[floor:limit]
	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return floor + i + 2
	}
	if i := strings.LastIndexByte(window, '\n'); i >= 0 {
		return floor + i + 1
	}
	if i := strings.LastIndexFunc(window, unicode.IsSpace); i >= 0 {
		_, size := utf8.DecodeRuneInString(window[i:])
		return floor + i + size
	}
	return limit
}
