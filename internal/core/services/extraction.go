package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/core/ports/driving"
	"github.com/custodia-labs/valvex/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// pingTimeout bounds the reachability check made before a run.
const pingTimeout = 5 * time.Second

// ExtractionService drives the chunked extraction pipeline:
// chunking, per-chunk extraction, then deduplication.
type ExtractionService struct {
	llmFactory  driven.LLMFactory
	chunkers    driven.ChunkerRegistry
	shaper      driven.ResponseShaper
	promptStore driven.PromptStore
	runStore    driven.RunStore

	now   func() time.Time
	newID func(time.Time) string
}

// NewExtractionService creates a new extraction service.
// The promptStore and runStore are optional - without a run store, finished
// runs are not recorded.
func NewExtractionService(
	llmFactory driven.LLMFactory,
	chunkers driven.ChunkerRegistry,
	shaper driven.ResponseShaper,
	promptStore driven.PromptStore,
	runStore driven.RunStore,
) *ExtractionService {
	return &ExtractionService{
		llmFactory:  llmFactory,
		chunkers:    chunkers,
		shaper:      shaper,
		promptStore: promptStore,
		runStore:    runStore,
		now:         time.Now,
		newID: func(t time.Time) string {
			return fmt.Sprintf("run-%d", t.UnixNano())
		},
	}
}

// runState accumulates the outcome of one run.
type runState struct {
	total      int
	summary    domain.RunSummary
	failures   []domain.ChunkFailure
	candidates []domain.Record
	chatLog    []domain.ChatTurn
	reporter   driven.ProgressReporter
}

// apply folds one chunk outcome into the run. Outcomes must arrive in
// increasing chunk order; a cancelled run may skip indexes.
func (r *runState) apply(o ChunkOutcome) {
	r.summary.ChunksProcessed++
	if o.Failed() {
		r.summary.ChunksFailed++
		r.failures = append(r.failures, domain.ChunkFailure{
			ChunkIndex: o.Chunk.Index,
			Offset:     o.Chunk.Offset,
			Reason:     o.Err.Error(),
		})
	} else {
		r.summary.CandidatesExtracted += o.Extracted
		r.summary.CandidatesRejected += o.Rejected
		r.candidates = append(r.candidates, o.Records...)
	}
	for _, m := range o.Exchange {
		r.chatLog = append(r.chatLog, domain.ChatTurn{ChunkIndex: o.Chunk.Index, Role: m.Role, Content: m.Content})
	}

	r.reporter.OnProgress(domain.ProgressEvent{
		Completed:  r.summary.ChunksProcessed,
		Total:      r.total,
		ChunkIndex: o.Chunk.Index,
		Records:    len(o.Records),
		Failed:     o.Failed(),
	})
}

// Run extracts records from req.Document.
//
//nolint:gocyclo // State machine with necessary sequential steps
func (s *ExtractionService) Run(ctx context.Context, req driving.RunRequest) (*domain.RunResult, error) {
	reporter := req.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	fail := func(err error) (*domain.RunResult, error) {
		logger.Warn("Run failed during setup: %v", err)
		reporter.OnState(domain.RunFailed)
		return nil, err
	}

	logger.Section("Extraction")
	reporter.OnState(domain.RunChunking)

	// 1. Setup checks
	doc, schema, p := req.Document, req.Schema, req.Pipeline
	if doc == nil || strings.TrimSpace(doc.Content) == "" {
		return fail(domain.ErrEmptyDocument)
	}
	if err := schema.Check(); err != nil {
		return fail(err)
	}
	if err := driven.ValidateChunking(p.ChunkSize, p.Overlap); err != nil {
		return fail(err)
	}
	if _, err := s.shaper.Hint(schema); err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrSchemaUnavailable, err))
	}

	chunkerName := p.Chunker
	if chunkerName == "" {
		chunkerName = domain.DefaultChunker
	}
	chunker, err := s.chunkers.Build(chunkerName, nil)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
	}

	llm, err := s.llmFactory.Create(&req.LLM)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
	}
	defer llm.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, pingTimeout)
	err = llm.Ping(pingCtx)
	cancelPing()
	if err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err))
	}

	// 2. Chunking: count first, the sequence is walked again during extraction
	total := 0
	for range chunker.Split(doc, p.ChunkSize, p.Overlap) {
		total++
	}
	logger.Info("Document %q: %d bytes, %d chunks (%s, max %d, overlap %d)",
		doc.URI, doc.Len(), total, chunker.Name(), p.ChunkSize, p.Overlap)

	started := s.now()
	result := &domain.RunResult{
		ID:        req.ID,
		Model:     llm.ModelName(),
		Source:    doc.URI,
		StartedAt: started,
	}
	if result.ID == "" {
		result.ID = s.newID(started)
	}

	// 3. Extracting
	reporter.OnState(domain.RunExtracting)
	state := &runState{total: total, reporter: reporter}
	state.summary.ChunksTotal = total

	if s.promptStore != nil {
		s.promptStore.Reload()
	}
	extractor := NewExtractor(llm, s.shaper,
		WithCallTimeout(time.Duration(p.CallTimeoutSeconds)*time.Second),
		WithPromptStore(s.promptStore),
	)

	var cancelled bool
	if p.Concurrency > 1 && !p.Conversational {
		cancelled = s.extractConcurrent(ctx, extractor, chunker, req, state)
	} else {
		cancelled = s.extractSequential(ctx, extractor, chunker, req, state)
	}

	// 4. Aggregating
	dedup := NewDeduplicator(schema)
	if cancelled {
		result.Status = domain.RunCancelled
	} else {
		reporter.OnState(domain.RunAggregating)
		result.Status = domain.RunDone
	}
	result.Records = dedup.Merge(state.candidates)
	result.FinishedAt = s.now()

	state.summary.RecordsAccepted = result.Records.Len()
	state.summary.DuplicatesDiscarded = dedup.Duplicates()
	state.summary.Unmergeable = dedup.Unmergeable()
	result.Summary = state.summary
	result.Failures = state.failures
	result.ChatLog = state.chatLog

	logger.Info("Run %s %s: %d/%d chunks processed, %d failed, %d records, %d duplicates",
		result.ID, result.Status, result.Summary.ChunksProcessed, total,
		result.Summary.ChunksFailed, result.Summary.RecordsAccepted, result.Summary.DuplicatesDiscarded)

	s.record(context.WithoutCancel(ctx), result)
	reporter.OnState(result.Status)

	return result, nil
}

// extractSequential extracts chunks one at a time.
// Returns true if ctx was cancelled before every chunk was processed.
func (s *ExtractionService) extractSequential(
	ctx context.Context,
	extractor *Extractor,
	chunker driven.Chunker,
	req driving.RunRequest,
	state *runState,
) bool {
	p := req.Pipeline
	turns := p.HistoryTurns
	if turns <= 0 {
		turns = domain.DefaultHistoryTurns
	}

	var history []driven.ChatMessage
	for chunk := range chunker.Split(req.Document, p.ChunkSize, p.Overlap) {
		if ctx.Err() != nil {
			logger.Info("Cancelled before chunk %d", chunk.Index)
			return true
		}

		var prior []driven.ChatMessage
		if p.Conversational {
			prior = history
		}

		outcome := extractor.Extract(ctx, chunk, req.Schema, prior)
		if outcome.Failed() && ctx.Err() != nil {
			logger.Info("Cancelled during chunk %d", chunk.Index)
			return true
		}
		state.apply(outcome)

		if p.Conversational && len(outcome.Exchange) > 0 {
			history = append(history, outcome.Exchange...)
			if limit := 2 * turns; len(history) > limit {
				history = history[len(history)-limit:]
			}
		}
	}
	return false
}

// extractConcurrent extracts up to p.Concurrency chunks at once and applies
// outcomes strictly in chunk order.
// Returns true if ctx was cancelled before every chunk was processed.
func (s *ExtractionService) extractConcurrent(
	ctx context.Context,
	extractor *Extractor,
	chunker driven.Chunker,
	req driving.RunRequest,
	state *runState,
) bool {
	p := req.Pipeline
	jobs := make(chan domain.Chunk)
	outcomes := make(chan ChunkOutcome)

	go func() {
		defer close(jobs)
		for chunk := range chunker.Split(req.Document, p.ChunkSize, p.Overlap) {
			select {
			case jobs <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < p.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range jobs {
				if ctx.Err() != nil {
					continue
				}
				outcomes <- extractor.Extract(ctx, chunk, req.Schema, nil)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	pending := make(map[int]ChunkOutcome)
	next := 0
	stopped := false
	var late []ChunkOutcome
	for o := range outcomes {
		if stopped {
			if !o.Failed() {
				late = append(late, o)
			}
			continue
		}
		pending[o.Chunk.Index] = o
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if ready.Failed() && ctx.Err() != nil {
				stopped = true
				break
			}
			state.apply(ready)
			next++
		}
	}

	// After a cancel, chunks past the gap that did finish are still kept
	for _, o := range pending {
		if !o.Failed() {
			late = append(late, o)
		}
	}
	slices.SortFunc(late, func(a, b ChunkOutcome) int {
		return cmp.Compare(a.Chunk.Index, b.Chunk.Index)
	})
	for _, o := range late {
		state.apply(o)
	}

	if processed := next + len(late); processed < state.total {
		logger.Info("Cancelled after %d of %d chunks", processed, state.total)
		return true
	}
	return false
}

// record stores the finished run when a run store is configured.
func (s *ExtractionService) record(ctx context.Context, result *domain.RunResult) {
	if s.runStore == nil {
		return
	}
	run := &domain.RunRecord{
		ID:         result.ID,
		Status:     result.Status,
		Model:      result.Model,
		Source:     result.Source,
		Schema:     result.Records.Schema.Name,
		Fields:     result.Records.Schema.FieldNames(),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Summary:    result.Summary,
		Records:    result.Records.Records,
	}
	if err := s.runStore.SaveRun(ctx, run); err != nil {
		logger.Error("Failed to record run %s: %v", result.ID, err)
	}
}

// nopReporter discards progress.
type nopReporter struct{}

func (nopReporter) OnState(domain.RunState)         {}
func (nopReporter) OnProgress(domain.ProgressEvent) {}
