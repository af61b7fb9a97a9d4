package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testRun(id string, started time.Time) *domain.RunRecord {
	return &domain.RunRecord{
		ID:         id,
		Status:     domain.RunDone,
		Model:      "llama3.2",
		Source:     "valves.xlsx",
		Schema:     "valve",
		Fields:     domain.ValveSchema().FieldNames(),
		StartedAt:  started,
		FinishedAt: started.Add(12 * time.Second),
		Summary:    domain.RunSummary{ChunksTotal: 3, ChunksProcessed: 3, RecordsAccepted: 2, DuplicatesDiscarded: 1},
		Records: []domain.Record{
			{ChunkIndex: 0, Values: map[string]any{"serial_id": "BF-2023-A101", "width": 10.0, "material": nil}},
			{ChunkIndex: 2, Values: map[string]any{"serial_id": "GV-2022-B205", "valve_type": "gate"}},
		},
	}
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(ctx, testRun("run-1", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	run, err := reopened.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)

	var versions int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

func TestStore_SaveAndGetRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 9, 0, 0, 123, time.UTC)

	require.NoError(t, store.SaveRun(ctx, testRun("run-1", started)))

	run, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, domain.RunDone, run.Status)
	assert.Equal(t, "llama3.2", run.Model)
	assert.Equal(t, "valves.xlsx", run.Source)
	assert.Equal(t, "valve", run.Schema)
	assert.Equal(t, domain.ValveSchema().FieldNames(), run.Fields)
	assert.True(t, started.Equal(run.StartedAt))
	assert.Equal(t, 12*time.Second, run.FinishedAt.Sub(run.StartedAt))
	assert.Equal(t, 2, run.Summary.RecordsAccepted)
	assert.Equal(t, 1, run.Summary.DuplicatesDiscarded)

	require.Len(t, run.Records, 2)
	assert.Equal(t, "BF-2023-A101", run.Records[0].Values["serial_id"])
	assert.Equal(t, 10.0, run.Records[0].Values["width"])
	assert.Nil(t, run.Records[0].Values["material"])
	assert.Equal(t, 2, run.Records[1].ChunkIndex)
}

func TestStore_SaveRun_Replaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Now())
	require.NoError(t, store.SaveRun(ctx, run))

	run.Status = domain.RunCancelled
	run.Records = run.Records[:1]
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunCancelled, got.Status)
	assert.Len(t, got.Records, 1)
}

func TestStore_SaveRun_RequiresID(t *testing.T) {
	store := setupTestStore(t)

	assert.ErrorIs(t, store.SaveRun(context.Background(), &domain.RunRecord{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveRun(context.Background(), nil), domain.ErrInvalidInput)
}

func TestStore_GetRun_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := range 4 {
		require.NoError(t, store.SaveRun(ctx, testRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-0", runs[3].ID)
	for _, r := range runs {
		assert.Nil(t, r.Records)
	}

	limited, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-2", limited[1].ID)
}

func TestStore_ListRuns_Empty(t *testing.T) {
	store := setupTestStore(t)

	runs, err := store.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_DeleteRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRun(ctx, testRun("run-1", time.Now())))

	require.NoError(t, store.DeleteRun(ctx, "run-1"))

	_, err := store.GetRun(ctx, "run-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var orphans int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM run_records").Scan(&orphans))
	assert.Zero(t, orphans)

	assert.ErrorIs(t, store.DeleteRun(ctx, "run-1"), domain.ErrNotFound)
}
