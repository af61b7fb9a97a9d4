package progress

import (
	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/logger"
)

// Ensure Log and Noop implement the interface.
var (
	_ driven.ProgressReporter = Log{}
	_ driven.ProgressReporter = Noop{}
)

// Log reports through the logger. Chunk results are debug lines.
type Log struct{}

// OnState logs the new state.
func (Log) OnState(state domain.RunState) {
	logger.Info("Pipeline %s", state)
}

// OnProgress logs one chunk result.
func (Log) OnProgress(event domain.ProgressEvent) {
	if event.Failed {
		logger.Warn("Chunk %d failed (%d/%d)", event.ChunkIndex, event.Completed, event.Total)
		return
	}
	logger.Debug("Chunk %d: %d records (%d/%d)", event.ChunkIndex, event.Records, event.Completed, event.Total)
}

// Noop discards all events.
type Noop struct{}

// OnState does nothing.
func (Noop) OnState(domain.RunState) {}

// OnProgress does nothing.
func (Noop) OnProgress(domain.ProgressEvent) {}
