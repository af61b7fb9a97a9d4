package driven

import (
	"context"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// RunStore persists the history of extraction runs.
// Backed by SQLite for the CLI.
type RunStore interface {
	// SaveRun stores a finished run with its records.
	SaveRun(ctx context.Context, run *domain.RunRecord) error

	// GetRun retrieves a run and its records by ID.
	// Returns ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, id string) (*domain.RunRecord, error)

	// ListRuns returns the most recent runs first, without records.
	// A limit of zero returns every run.
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// DeleteRun removes a run and its records.
	DeleteRun(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}
