// Package plaintext reads plain text documents.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.DocumentReader = (*Reader)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader handles plain text documents. It is also the fallback for
// files without an extension and for standard input.
type Reader struct{}

// New creates a new plain text reader.
func New() *Reader {
	return &Reader{}
}

// Name returns the reader name.
func (r *Reader) Name() string {
	return "plaintext"
}

// Extensions returns the file extensions this reader handles.
func (r *Reader) Extensions() []string {
	return []string{"", ".txt", ".text", ".log", ".csv", ".tsv"}
}

// Read loads the whole input as text.
func (r *Reader) Read(ctx context.Context, in io.Reader, uri string, _ driven.SourceOptions) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}

	content, err := Normalise(data)
	if err != nil {
		return nil, err
	}
	return &domain.Document{URI: uri, Content: content}, nil
}

// Normalise checks data is UTF-8, drops a byte order mark and converts
// CRLF and lone CR line endings to LF.
func Normalise(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: input is not valid UTF-8 text", domain.ErrInvalidInput)
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n"), nil
}
