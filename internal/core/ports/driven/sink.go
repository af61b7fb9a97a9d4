package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// ResultSink serialises a run result in one output format.
// Fields are written in schema order; null fields are omitted or left empty.
type ResultSink interface {
	// Format returns the output format written by this sink.
	Format() domain.OutputFormat

	// Write serialises result to w.
	Write(ctx context.Context, w io.Writer, result *domain.RunResult) error
}
