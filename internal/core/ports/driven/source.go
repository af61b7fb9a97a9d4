package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// SourceOptions configures how a document is read.
type SourceOptions struct {
	// Column selects the spreadsheet column by header name.
	// Empty selects the first textual column; "*" joins every column of a row.
	Column string

	// Sheet selects the worksheet by name. Empty selects the first sheet.
	Sheet string
}

// DocumentReader turns one input format into a Document.
type DocumentReader interface {
	// Name returns the reader name for logging.
	Name() string

	// Extensions returns the lower-case file extensions handled, including the dot.
	// The empty string matches files without an extension.
	Extensions() []string

	// Read produces a document from r. uri is recorded on the document.
	Read(ctx context.Context, r io.Reader, uri string, opts SourceOptions) (*domain.Document, error)
}

// DocumentSource loads documents by URI.
// A URI is a file path, or "-" for standard input.
type DocumentSource interface {
	// Load reads the document at uri with the reader matching its extension.
	// Returns ErrUnsupportedType if no reader handles the extension.
	Load(ctx context.Context, uri string, opts SourceOptions) (*domain.Document, error)

	// Register adds a reader to the source.
	Register(reader DocumentReader)

	// SupportedExtensions returns all extensions that can be loaded.
	SupportedExtensions() []string
}
