package readers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// StdinURI is the URI that reads the document from standard input.
const StdinURI = "-"

// Verify interface compliance.
var _ driven.DocumentSource = (*Source)(nil)

// Source dispatches documents to readers by file extension.
type Source struct {
	readers map[string]driven.DocumentReader
	stdin   io.Reader
}

// Option configures a Source.
type Option func(*Source)

// WithStdin sets the reader used for the "-" URI.
func WithStdin(r io.Reader) Option {
	return func(s *Source) {
		s.stdin = r
	}
}

// NewSource creates a source with no readers registered.
func NewSource(opts ...Option) *Source {
	s := &Source{
		readers: make(map[string]driven.DocumentReader),
		stdin:   os.Stdin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a reader for each of its extensions.
// A later reader replaces an earlier one for the same extension.
func (s *Source) Register(reader driven.DocumentReader) {
	for _, ext := range reader.Extensions() {
		s.readers[strings.ToLower(ext)] = reader
	}
}

// SupportedExtensions returns the registered extensions in sorted order.
// Files without an extension are listed as "".
func (s *Source) SupportedExtensions() []string {
	exts := make([]string, 0, len(s.readers))
	for ext := range s.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load reads the document at uri. Standard input is read as plain text.
func (s *Source) Load(ctx context.Context, uri string, opts driven.SourceOptions) (*domain.Document, error) {
	if uri == StdinURI {
		reader, ok := s.readers[""]
		if !ok {
			return nil, fmt.Errorf("%w: no reader for standard input", domain.ErrUnsupportedType)
		}
		return s.read(ctx, reader, s.stdin, uri, opts)
	}

	ext := strings.ToLower(filepath.Ext(uri))
	reader, ok := s.readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no reader for %q files", domain.ErrUnsupportedType, ext)
	}

	f, err := os.Open(uri)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, uri)
		}
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}
	defer f.Close()

	return s.read(ctx, reader, f, uri, opts)
}

func (s *Source) read(ctx context.Context, reader driven.DocumentReader, r io.Reader, uri string, opts driven.SourceOptions) (*domain.Document, error) {
	doc, err := reader.Read(ctx, r, uri, opts)
	if err != nil {
		return nil, fmt.Errorf("%s reader: %w", reader.Name(), err)
	}
	doc.URI = uri
	if doc.ID == "" {
		doc.ID = DocumentID(uri)
	}
	return doc, nil
}

// DocumentID derives a document ID from a URI: the file name without its extension.
func DocumentID(uri string) string {
	if uri == StdinURI || uri == "" {
		return "stdin"
	}
	name := filepath.Base(uri)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
