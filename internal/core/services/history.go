package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService gives access to recorded runs.
type HistoryService struct {
	runStore driven.RunStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(runStore driven.RunStore) *HistoryService {
	return &HistoryService{runStore: runStore}
}

// List returns the most recent runs first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	return s.runStore.ListRuns(ctx, limit)
}

// Get returns one run with its records.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: run ID is required", domain.ErrInvalidInput)
	}
	return s.runStore.GetRun(ctx, id)
}

// Delete removes a run.
func (s *HistoryService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: run ID is required", domain.ErrInvalidInput)
	}
	if _, err := s.runStore.GetRun(ctx, id); err != nil {
		return err
	}
	return s.runStore.DeleteRun(ctx, id)
}
