package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/logger"
)

// defaultExtractSystemPrompt is the fallback prompt when no PromptStore is configured.
const defaultExtractSystemPrompt = `You are a specification analyzer. Extract every %s described in the text.
Return ONLY a JSON object with the single key "%s" holding an array of records, and nothing else.
Use null for values the text does not state. Return an empty array when the text describes none.

Fields:
%s`

// defaultExtractUserPrompt is the fallback prompt when no PromptStore is configured.
const defaultExtractUserPrompt = `Extract the specifications from this text:

%s`

// ChunkOutcome is the result of extracting one chunk.
// Err is set when the chunk produced no usable model response; Records is then empty.
type ChunkOutcome struct {
	Chunk domain.Chunk

	// Records are the candidates that passed schema validation, in response order.
	Records []domain.Record

	// Extracted counts candidate mappings found in the response.
	Extracted int

	// Rejected counts candidates that failed schema validation.
	Rejected int

	// Err wraps domain.ErrChunkExtraction on failure.
	Err error

	// Exchange holds the prompt and reply as sent and received. It is set
	// whenever the model call returned, even if the reply could not be parsed.
	Exchange []driven.ChatMessage
}

// Failed reports whether the chunk produced no usable response.
func (o ChunkOutcome) Failed() bool {
	return o.Err != nil
}

// Extractor issues one extraction request per chunk.
// It never fails a run: every model or parse failure becomes ChunkOutcome.Err.
type Extractor struct {
	llm         driven.LLMService
	shaper      driven.ResponseShaper
	promptStore driven.PromptStore
	callTimeout time.Duration
	maxTokens   int

	hintMu sync.Mutex
	hints  map[*domain.RecordSchema]json.RawMessage
}

// ExtractorOption configures the extractor.
type ExtractorOption func(*Extractor)

// WithCallTimeout bounds each model call. Zero disables the limit.
func WithCallTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d >= 0 {
			e.callTimeout = d
		}
	}
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithPromptStore sets the store for customisable prompts.
func WithPromptStore(store driven.PromptStore) ExtractorOption {
	return func(e *Extractor) {
		e.promptStore = store
	}
}

// NewExtractor creates an extractor talking to llm.
func NewExtractor(llm driven.LLMService, shaper driven.ResponseShaper, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		llm:    llm,
		shaper: shaper,
		hints:  make(map[*domain.RecordSchema]json.RawMessage),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract asks the model for the records in chunk.
// history holds earlier exchanges for conversational context and may be nil.
func (e *Extractor) Extract(
	ctx context.Context,
	chunk domain.Chunk,
	schema *domain.RecordSchema,
	history []driven.ChatMessage,
) ChunkOutcome {
	out := ChunkOutcome{Chunk: chunk}

	hint, err := e.hint(schema)
	if err != nil {
		out.Err = e.fail(chunk, err)
		return out
	}

	prompt := driven.ChatMessage{Role: driven.RoleUser, Content: e.userPrompt(chunk)}
	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: e.systemPrompt(schema)})
	messages = append(messages, history...)
	messages = append(messages, prompt)

	callCtx := ctx
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}

	started := time.Now()
	reply, err := e.llm.Chat(callCtx, messages, driven.ChatOptions{
		MaxTokens:   e.maxTokens,
		Temperature: 0,
		Format:      hint,
		FormatName:  schema.Collection,
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("call timed out after %s: %w", e.callTimeout, err)
		}
		out.Err = e.fail(chunk, err)
		return out
	}
	logger.Debug("Chunk %d: reply of %d bytes in %s", chunk.Index, len(reply), time.Since(started).Round(time.Millisecond))
	out.Exchange = []driven.ChatMessage{prompt, {Role: driven.RoleAssistant, Content: reply}}

	payload, err := payloadJSON(reply)
	if err != nil {
		out.Err = e.fail(chunk, err)
		return out
	}

	items, err := e.shaper.Items(schema, payload)
	if err != nil {
		out.Err = e.fail(chunk, err)
		return out
	}

	out.Extracted = len(items)
	for i, item := range items {
		record, err := schema.Validate(item)
		if err != nil {
			out.Rejected++
			logger.With("chunk", chunk.Index, "candidate", i).Debugf("candidate rejected: %v", err)
			continue
		}
		record.ChunkIndex = chunk.Index
		out.Records = append(out.Records, record)
	}
	return out
}

func (e *Extractor) fail(chunk domain.Chunk, err error) error {
	logger.With("chunk", chunk.Index, "offset", chunk.Offset).Warnf("extraction failed: %v", err)
	return fmt.Errorf("%w: chunk %d: %w", domain.ErrChunkExtraction, chunk.Index, err)
}

func (e *Extractor) hint(schema *domain.RecordSchema) (json.RawMessage, error) {
	e.hintMu.Lock()
	defer e.hintMu.Unlock()

	if h, ok := e.hints[schema]; ok {
		return h, nil
	}
	h, err := e.shaper.Hint(schema)
	if err != nil {
		return nil, fmt.Errorf("response shape: %w", err)
	}
	e.hints[schema] = h
	return h, nil
}

func (e *Extractor) systemPrompt(schema *domain.RecordSchema) string {
	template := e.loadPrompt(driven.PromptExtractSystem, defaultExtractSystemPrompt)
	return fmt.Sprintf(template, schema.Name, schema.Collection, schema.Describe())
}

func (e *Extractor) userPrompt(chunk domain.Chunk) string {
	template := e.loadPrompt(driven.PromptExtractUser, defaultExtractUserPrompt)
	return fmt.Sprintf(template, chunk.Text)
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (e *Extractor) loadPrompt(name, fallback string) string {
	if e.promptStore == nil {
		return fallback
	}
	prompt, err := e.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// payloadJSON strips markdown code fences from reply and returns its first JSON value.
func payloadJSON(reply string) ([]byte, error) {
	s := strings.TrimSpace(reply)

	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
			rest = rest[nl+1:]
		}
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		s = strings.TrimSpace(rest)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return nil, fmt.Errorf("%w: no JSON value in reply", domain.ErrMalformedResponse)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s[start:])).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	return raw, nil
}
