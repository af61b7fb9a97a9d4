package driving

import (
	"context"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// HistoryService gives access to previous runs.
type HistoryService interface {
	// List returns the most recent runs first.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Get returns one run with its records.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// Delete removes a run.
	Delete(ctx context.Context, id string) error
}
