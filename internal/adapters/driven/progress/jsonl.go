package progress

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// Ensure JSONLines implements the interface.
var _ driven.ProgressReporter = (*JSONLines)(nil)

// Event is one line written by JSONLines.
type Event struct {
	Type      string    `json:"type"` // "state" or "progress"
	Timestamp time.Time `json:"timestamp"`
	State     string    `json:"state,omitempty"`
	Completed int       `json:"completed,omitempty"`
	Total     int       `json:"total,omitempty"`
	Chunk     *int      `json:"chunk,omitempty"`
	Records   int       `json:"records,omitempty"`
	Failed    bool      `json:"failed,omitempty"`
	Percent   float64   `json:"percent,omitempty"`
}

// JSONLines writes each state change and progress event as a JSON line.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
	now func() time.Time
}

// NewJSONLines creates a reporter writing to w.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(w), now: time.Now}
}

// OnState writes a state event.
func (j *JSONLines) OnState(state domain.RunState) {
	j.emit(Event{Type: "state", State: state.String()})
}

// OnProgress writes a progress event.
func (j *JSONLines) OnProgress(event domain.ProgressEvent) {
	chunk := event.ChunkIndex
	j.emit(Event{
		Type:      "progress",
		Completed: event.Completed,
		Total:     event.Total,
		Chunk:     &chunk,
		Records:   event.Records,
		Failed:    event.Failed,
		Percent:   event.Percent(),
	})
}

func (j *JSONLines) emit(e Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e.Timestamp = j.now().UTC()
	_ = j.enc.Encode(e)
}
