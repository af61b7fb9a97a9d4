package domain

import "time"

// RunState is a state of the extraction pipeline state machine.
type RunState string

// Pipeline states.
const (
	RunIdle        RunState = "idle"
	RunChunking    RunState = "chunking"
	RunExtracting  RunState = "extracting"
	RunAggregating RunState = "aggregating"
	RunDone        RunState = "done"
	RunFailed      RunState = "failed"
	RunCancelled   RunState = "cancelled"
)

// IsTerminal returns true if no further transitions follow the state.
func (s RunState) IsTerminal() bool {
	return s == RunDone || s == RunFailed || s == RunCancelled
}

// String returns the string representation.
func (s RunState) String() string {
	return string(s)
}

// ProgressEvent is emitted after each chunk completes, successfully or not.
type ProgressEvent struct {
	// Completed is the number of chunks processed so far.
	Completed int

	// Total is the number of chunks in the document.
	Total int

	// ChunkIndex is the chunk that just completed.
	ChunkIndex int

	// Records is the number of valid candidates extracted from the chunk.
	Records int

	// Failed is true when the chunk produced no usable model response.
	Failed bool
}

// Percent returns completion as a value between 0 and 100.
func (e ProgressEvent) Percent() float64 {
	if e.Total == 0 {
		return 100
	}
	return float64(e.Completed) * 100 / float64(e.Total)
}

// RunSummary counts what happened during a run.
type RunSummary struct {
	ChunksTotal         int
	ChunksProcessed     int
	ChunksFailed        int
	CandidatesExtracted int
	CandidatesRejected  int
	RecordsAccepted     int
	DuplicatesDiscarded int
	Unmergeable         int
}

// ChunkFailure records a chunk whose extraction failed.
type ChunkFailure struct {
	ChunkIndex int
	Offset     int
	Reason     string
}

// Outcome classifies a finished run for the user.
type Outcome string

// Run outcomes.
const (
	// OutcomeRecords means at least one record was extracted.
	OutcomeRecords Outcome = "records"

	// OutcomeNoMatches means every processed chunk answered but none held a record.
	OutcomeNoMatches Outcome = "no_matches"

	// OutcomeAllFailed means every processed chunk failed.
	OutcomeAllFailed Outcome = "all_failed"
)

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	ID         string
	Status     RunState
	Model      string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Records    ResultSet
	Summary    RunSummary
	Failures   []ChunkFailure

	// ChatLog holds the prompt and reply of every chunk whose model call
	// returned, in chunk order.
	ChatLog []ChatTurn
}

// ChatTurn is one message exchanged with the model.
type ChatTurn struct {
	ChunkIndex int
	Role       string
	Content    string
}

// Outcome distinguishes "nothing matched" from "every chunk failed".
func (r *RunResult) Outcome() Outcome {
	if r.Records.Len() > 0 {
		return OutcomeRecords
	}
	if r.Summary.ChunksProcessed > 0 && r.Summary.ChunksFailed == r.Summary.ChunksProcessed {
		return OutcomeAllFailed
	}
	return OutcomeNoMatches
}

// Duration returns how long the run took.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunRecord is a stored summary of a past run.
type RunRecord struct {
	ID         string
	Status     RunState
	Model      string
	Source     string
	Schema     string
	Fields     []string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    RunSummary
	Records    []Record
}
