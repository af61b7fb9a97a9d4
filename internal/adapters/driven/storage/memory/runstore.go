package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.RunRecord
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.RunRecord),
	}
}

// SaveRun stores or replaces a run.
func (s *RunStore) SaveRun(_ context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	stored := *run
	stored.Fields = slices.Clone(run.Fields)
	stored.Records = cloneRecords(run.Records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = stored
	return nil
}

// GetRun retrieves a run and its records by ID.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	run.Fields = slices.Clone(run.Fields)
	run.Records = cloneRecords(run.Records)
	return &run, nil
}

// ListRuns returns the most recent runs first, without records.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]domain.RunRecord, error) {
	s.mu.RLock()
	runs := make([]domain.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		run.Fields = slices.Clone(run.Fields)
		run.Records = nil
		runs = append(runs, run)
	}
	s.mu.RUnlock()

	slices.SortFunc(runs, func(a, b domain.RunRecord) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		if a.ID > b.ID {
			return -1
		}
		if a.ID < b.ID {
			return 1
		}
		return 0
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// DeleteRun removes a run and its records.
func (s *RunStore) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.runs, id)
	return nil
}

// Close is a no-op for the memory store.
func (s *RunStore) Close() error {
	return nil
}

func cloneRecords(records []domain.Record) []domain.Record {
	if records == nil {
		return nil
	}
	out := make([]domain.Record, len(records))
	for i, r := range records {
		out[i] = domain.Record{
			ChunkIndex: r.ChunkIndex,
			Values:     make(map[string]any, len(r.Values)),
		}
		for k, v := range r.Values {
			out[i].Values[k] = v
		}
	}
	return out
}
