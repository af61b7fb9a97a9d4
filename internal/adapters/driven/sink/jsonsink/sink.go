// Package jsonsink writes run results as JSON documents.
package jsonsink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.ResultSink = (*Sink)(nil)

// Sink writes a JSON document holding run metadata and the records
// under structured_output.<collection>.
type Sink struct {
	indent string
}

// New creates a sink writing indented JSON.
func New() *Sink {
	return &Sink{indent: "  "}
}

// NewCompact creates a sink writing JSON on a single line.
func NewCompact() *Sink {
	return &Sink{}
}

// Format returns the output format written by this sink.
func (s *Sink) Format() domain.OutputFormat {
	return domain.OutputJSON
}

type document struct {
	RunID            string                     `json:"run_id"`
	Timestamp        string                     `json:"timestamp"`
	ModelUsed        string                     `json:"model_used"`
	Source           string                     `json:"source,omitempty"`
	Status           string                     `json:"status"`
	Outcome          string                     `json:"outcome"`
	Summary          summary                    `json:"summary"`
	Failures         []failure                  `json:"failures"`
	StructuredOutput map[string][]orderedRecord `json:"structured_output"`
	ChatLog          []chatTurn                 `json:"chat_log,omitempty"`
}

type chatTurn struct {
	ChunkIndex int    `json:"chunk_index"`
	Role       string `json:"role"`
	Content    string `json:"content"`
}

type summary struct {
	ChunksTotal         int `json:"chunks_total"`
	ChunksProcessed     int `json:"chunks_processed"`
	ChunksFailed        int `json:"chunks_failed"`
	CandidatesExtracted int `json:"candidates_extracted"`
	CandidatesRejected  int `json:"candidates_rejected"`
	RecordsAccepted     int `json:"records_accepted"`
	DuplicatesDiscarded int `json:"duplicates_discarded"`
	Unmergeable         int `json:"unmergeable"`
}

type failure struct {
	ChunkIndex int    `json:"chunk_index"`
	Offset     int    `json:"offset"`
	Reason     string `json:"reason"`
}

// orderedRecord marshals record values in schema field order, omitting nulls.
type orderedRecord struct {
	names  []string
	values map[string]any
}

func (r orderedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, name := range r.names {
		v := r.values[name]
		if v == nil {
			continue
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Write serialises result to w.
func (s *Sink) Write(ctx context.Context, w io.Writer, result *domain.RunResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result == nil || result.Records.Schema == nil {
		return fmt.Errorf("%w: result has no schema", domain.ErrInvalidInput)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", s.indent)
	if err := enc.Encode(build(result)); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func build(result *domain.RunResult) document {
	schema := result.Records.Schema
	names := schema.FieldNames()

	records := make([]orderedRecord, len(result.Records.Records))
	for i, r := range result.Records.Records {
		records[i] = orderedRecord{names: names, values: r.Values}
	}

	failures := make([]failure, len(result.Failures))
	for i, f := range result.Failures {
		failures[i] = failure{ChunkIndex: f.ChunkIndex, Offset: f.Offset, Reason: f.Reason}
	}

	var chatLog []chatTurn
	for _, t := range result.ChatLog {
		chatLog = append(chatLog, chatTurn{ChunkIndex: t.ChunkIndex, Role: t.Role, Content: t.Content})
	}

	ts := result.FinishedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	sum := result.Summary
	return document{
		RunID:     result.ID,
		Timestamp: ts.UTC().Format(time.RFC3339),
		ModelUsed: result.Model,
		Source:    result.Source,
		Status:    result.Status.String(),
		Outcome:   string(result.Outcome()),
		Summary: summary{
			ChunksTotal:         sum.ChunksTotal,
			ChunksProcessed:     sum.ChunksProcessed,
			ChunksFailed:        sum.ChunksFailed,
			CandidatesExtracted: sum.CandidatesExtracted,
			CandidatesRejected:  sum.CandidatesRejected,
			RecordsAccepted:     sum.RecordsAccepted,
			DuplicatesDiscarded: sum.DuplicatesDiscarded,
			Unmergeable:         sum.Unmergeable,
		},
		Failures:         failures,
		StructuredOutput: map[string][]orderedRecord{schema.Collection: records},
		ChatLog:          chatLog,
	}
}
