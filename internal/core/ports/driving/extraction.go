package driving

import (
	"context"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// ExtractionService runs the chunked extraction pipeline.
type ExtractionService interface {
	// Run extracts records from a document.
	// Setup errors (empty document, unusable schema, invalid chunk parameters,
	// unreachable model) are returned as errors with no result. Chunk failures
	// are absorbed and counted in the result summary. Cancelling ctx stops the
	// run between chunks and returns the partial result with a nil error.
	Run(ctx context.Context, req RunRequest) (*domain.RunResult, error)
}

// RunRequest holds everything one pipeline run needs.
type RunRequest struct {
	// ID identifies the run. Generated when empty.
	ID string

	// Document is the input text.
	Document *domain.Document

	// Schema declares the records to extract.
	Schema *domain.RecordSchema

	// LLM selects the model collaborator.
	LLM domain.LLMSettings

	// Pipeline holds chunking and extraction parameters.
	Pipeline domain.PipelineSettings

	// Reporter receives state transitions and progress. May be nil.
	Reporter driven.ProgressReporter
}

// DocumentService loads input documents.
type DocumentService interface {
	// Load reads the document at uri ("-" for standard input).
	Load(ctx context.Context, uri string, opts driven.SourceOptions) (*domain.Document, error)

	// SupportedExtensions returns the file extensions that can be loaded.
	SupportedExtensions() []string
}

// ExportService writes run results.
type ExportService interface {
	// Export writes result to path in the given format and returns the path written.
	// An empty path derives a file name from the run ID inside dir.
	Export(ctx context.Context, result *domain.RunResult, format domain.OutputFormat, dir, path string) (string, error)

	// Formats returns the available output formats.
	Formats() []domain.OutputFormat
}
