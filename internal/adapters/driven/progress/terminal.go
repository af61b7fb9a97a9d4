package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// Ensure Terminal implements the interface.
var _ driven.ProgressReporter = (*Terminal)(nil)

// Terminal draws a progress bar over the chunks of a run.
// The bar starts on the first progress event, once the chunk total is known.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	bar    *pterm.ProgressbarPrinter
	failed int
}

// NewTerminal creates a terminal reporter writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// OnState stops the bar when the run ends.
func (t *Terminal) OnState(state domain.RunState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state == domain.RunChunking {
		t.failed = 0
	}
	if state.IsTerminal() || state == domain.RunAggregating {
		t.stop()
	}
}

// OnProgress advances the bar by one chunk.
func (t *Terminal) OnProgress(event domain.ProgressEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bar == nil {
		bar, err := pterm.DefaultProgressbar.
			WithTotal(event.Total).
			WithTitle("Extracting").
			WithWriter(t.w).
			WithRemoveWhenDone(false).
			Start()
		if err != nil {
			return
		}
		t.bar = bar
	}

	if event.Failed {
		t.failed++
	}
	t.bar.UpdateTitle(title(event, t.failed))
	t.bar.Increment()
}

func (t *Terminal) stop() {
	if t.bar == nil {
		return
	}
	_, _ = t.bar.Stop()
	t.bar = nil
}

func title(event domain.ProgressEvent, failed int) string {
	if failed == 0 {
		return fmt.Sprintf("Chunk %d/%d", event.Completed, event.Total)
	}
	return fmt.Sprintf("Chunk %d/%d (%d failed)", event.Completed, event.Total, failed)
}
