package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/valvex/internal/adapters/driven/progress"
	"github.com/custodia-labs/valvex/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/core/ports/driving"
	"github.com/custodia-labs/valvex/internal/logger"
)

// Progress display modes.
const (
	progressAuto = "auto"
	progressBar  = "bar"
	progressJSON = "json"
	progressLog  = "log"
	progressNone = "none"
)

// maxFailuresShown bounds the chunk failures listed after a run.
const maxFailuresShown = 5

// extractFlags holds the flags of the extract command.
type extractFlags struct {
	output         string
	format         string
	dir            string
	provider       string
	model          string
	baseURL        string
	chunker        string
	chunkSize      int
	overlap        int
	concurrency    int
	conversational bool
	schema         string
	column         string
	sheet          string
	progress       string
	watch          bool
}

var extractOpts extractFlags

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract valve records from a document",
	Long: `Splits a document into overlapping chunks, extracts records from each
chunk with the configured model, and merges them into one deduplicated set.

The document can be plain text, Markdown, an Excel workbook (.xlsx, .xls), or
"-" for standard input. For spreadsheets, --column picks the column to read;
"*" reads every column of each row.

Flags override the stored settings for this run only.`,
	Example: `  valvex extract inventory.txt
  valvex extract messy_valve_data.xlsx --column '*' --format tabular
  cat notes.txt | valvex extract - --provider openai --model gpt-4o-mini
  valvex extract log.md --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extractOpts.output, "output", "o", "", "output file (default: <dir>/<run-id>.<ext>)")
	f.StringVarP(&extractOpts.format, "format", "f", "", "output format: json or tabular")
	f.StringVar(&extractOpts.dir, "dir", "", "directory for output files")
	f.StringVar(&extractOpts.provider, "provider", "", "LLM provider: ollama, openai or anthropic")
	f.StringVarP(&extractOpts.model, "model", "m", "", "model name")
	f.StringVar(&extractOpts.baseURL, "base-url", "", "provider API endpoint")
	f.StringVar(&extractOpts.chunker, "chunker", "", "chunking strategy: boundary or fixed")
	f.IntVar(&extractOpts.chunkSize, "chunk-size", 0, "maximum chunk length in bytes")
	f.IntVar(&extractOpts.overlap, "overlap", 0, "bytes shared by consecutive chunks")
	f.IntVarP(&extractOpts.concurrency, "concurrency", "j", 0, "chunks extracted at once")
	f.BoolVar(&extractOpts.conversational, "conversational", false, "feed earlier chunks' exchanges into later requests")
	f.StringVar(&extractOpts.schema, "schema", "", "record schema file (.toml, .yaml, .json)")
	f.StringVar(&extractOpts.column, "column", "", "spreadsheet column to read, or '*' for every column")
	f.StringVar(&extractOpts.sheet, "sheet", "", "spreadsheet sheet to read")
	f.StringVar(&extractOpts.progress, "progress", progressAuto, "progress display: auto, bar, json, log or none")
	f.BoolVarP(&extractOpts.watch, "watch", "w", false, "re-run whenever the file changes")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionService == nil || documentService == nil || exportService == nil ||
		settingsService == nil || schemaService == nil {
		return errors.New("extraction services not configured")
	}
	uri := args[0]

	stored, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	settings := *stored
	if err := applyExtractFlags(cmd, &settings); err != nil {
		return err
	}

	schemaPath := settings.SchemaPath
	if cmd.Flags().Changed("schema") {
		schemaPath = extractOpts.schema
	}
	schema, err := schemaService.Load(schemaPath)
	if err != nil {
		return errors.WithHint(err, "check the schema file with 'valvex schema --schema "+schemaPath+"'")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() error {
		return extractOnce(ctx, cmd, uri, &settings, schema)
	}

	if extractOpts.watch {
		if uri == "-" {
			return errors.WithHint(
				fmt.Errorf("%w: cannot watch standard input", domain.ErrInvalidInput),
				"pass a file path to use --watch")
		}
		cmd.PrintErrf("Watching %s (Ctrl+C to stop)\n", uri)
		return watchFile(ctx, uri, watchDebounce, func() {
			if err := run(); err != nil && ctx.Err() == nil {
				cmd.PrintErrln(errorText(err))
			}
		})
	}
	return run()
}

// applyExtractFlags overrides settings with the flags set on the command line.
func applyExtractFlags(cmd *cobra.Command, s *domain.AppSettings) error {
	flags := cmd.Flags()

	if flags.Changed("provider") {
		if err := switchProvider(&s.LLM, extractOpts.provider); err != nil {
			return err
		}
	}
	if flags.Changed("model") {
		s.LLM.Model = extractOpts.model
	}
	if flags.Changed("base-url") {
		s.LLM.BaseURL = extractOpts.baseURL
	}

	if flags.Changed("chunker") {
		s.Pipeline.Chunker = extractOpts.chunker
	}
	if flags.Changed("chunk-size") {
		s.Pipeline.ChunkSize = extractOpts.chunkSize
	}
	if flags.Changed("overlap") {
		s.Pipeline.Overlap = extractOpts.overlap
	}
	if flags.Changed("concurrency") {
		if extractOpts.concurrency < 1 {
			return fmt.Errorf("%w: concurrency must be at least 1", domain.ErrInvalidInput)
		}
		s.Pipeline.Concurrency = extractOpts.concurrency
	}
	if flags.Changed("conversational") {
		s.Pipeline.Conversational = extractOpts.conversational
	}

	if flags.Changed("format") {
		format := domain.OutputFormat(strings.ToLower(extractOpts.format))
		if !format.IsValid() {
			return fmt.Errorf("%w: invalid output format: %s", domain.ErrInvalidInput, extractOpts.format)
		}
		s.Output.Format = format
	}
	if flags.Changed("dir") {
		s.Output.Dir = extractOpts.dir
	}
	return nil
}

// switchProvider selects another provider with its default model and endpoint.
// The API key is kept.
func switchProvider(llm *domain.LLMSettings, name string) error {
	provider := domain.AIProvider(strings.ToLower(name))
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, name)
	}
	if provider == llm.Provider {
		return nil
	}
	llm.Provider = provider
	llm.Model = domain.DefaultLLMModels()[provider]
	llm.BaseURL = ""
	if provider == domain.AIProviderOllama {
		llm.BaseURL = domain.DefaultOllamaURL
	}
	return nil
}

// extractOnce loads the document, runs the pipeline and writes the result.
func extractOnce(
	ctx context.Context,
	cmd *cobra.Command,
	uri string,
	settings *domain.AppSettings,
	schema *domain.RecordSchema,
) error {
	doc, err := documentService.Load(ctx, uri, driven.SourceOptions{
		Column: extractOpts.column,
		Sheet:  extractOpts.sheet,
	})
	if err != nil {
		return withLoadHint(err)
	}

	reporter, err := newReporter(cmd, extractOpts.progress)
	if err != nil {
		return err
	}

	result, err := extractionService.Run(ctx, driving.RunRequest{
		ID:       uuid.NewString(),
		Document: doc,
		Schema:   schema,
		LLM:      settings.LLM,
		Pipeline: settings.Pipeline,
		Reporter: reporter,
	})
	if err != nil {
		return withRunHint(err, settings.LLM)
	}

	path, err := exportService.Export(context.WithoutCancel(ctx), result, settings.Output.Format,
		settings.Output.Dir, extractOpts.output)
	if err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	printRunSummary(cmd, result, path)
	return nil
}

// newReporter picks how progress is shown.
func newReporter(cmd *cobra.Command, mode string) (driven.ProgressReporter, error) {
	switch mode {
	case progressAuto, "":
		if isTerminal(cmd.ErrOrStderr()) && !logger.IsVerbose() {
			return progress.NewTerminal(cmd.ErrOrStderr()), nil
		}
		return progress.Log{}, nil
	case progressBar:
		return progress.NewTerminal(cmd.ErrOrStderr()), nil
	case progressJSON:
		return progress.NewJSONLines(cmd.ErrOrStderr()), nil
	case progressLog:
		return progress.Log{}, nil
	case progressNone:
		return progress.Noop{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown progress mode %q (auto, bar, json, log, none)",
			domain.ErrInvalidInput, mode)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// withLoadHint attaches guidance to document loading errors.
func withLoadHint(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnsupportedType):
		return errors.WithHint(err, "supported inputs: "+strings.Join(documentService.SupportedExtensions(), ", ")+
			" or '-' for standard input")
	case errors.Is(err, domain.ErrNotFound):
		return errors.WithHint(err, "check the file path")
	}
	return err
}

// withRunHint attaches guidance to pipeline setup errors.
func withRunHint(err error, llm domain.LLMSettings) error {
	switch {
	case errors.Is(err, domain.ErrModelUnavailable):
		if llm.Provider == domain.AIProviderOllama {
			return errors.WithHintf(err,
				"make sure Ollama is running on %s and the model is available: ollama pull %s",
				llm.BaseURL, llm.Model)
		}
		return errors.WithHint(err, "check llm.api_key, llm.base_url and llm.model with 'valvex settings show'")
	case errors.Is(err, domain.ErrEmptyDocument):
		return errors.WithHint(err, "for spreadsheets pick a column with --column NAME, or --column '*' to read every column")
	case errors.Is(err, domain.ErrSchemaUnavailable):
		return errors.WithHint(err, "run 'valvex schema' to inspect the active schema")
	}
	return err
}

// errorText renders an error with its hints.
func errorText(err error) string {
	text := "Error: " + err.Error()
	if hint := errors.FlattenHints(err); hint != "" {
		text += "\nHint: " + hint
	}
	return text
}

// printRunSummary prints the result panel and any warnings.
func printRunSummary(cmd *cobra.Command, result *domain.RunResult, path string) {
	st := styles.DefaultStyles()
	sum := result.Summary

	lines := []string{
		st.Title.Render("Run "+result.ID) + "  " + st.State(result.Status).Render(result.Status.String()),
		st.Row("Model", result.Model),
		st.Row("Source", result.Source),
		st.Row("Chunks", fmt.Sprintf("%d/%d processed, %d failed", sum.ChunksProcessed, sum.ChunksTotal, sum.ChunksFailed)),
		st.Row("Candidates", fmt.Sprintf("%d extracted, %d rejected", sum.CandidatesExtracted, sum.CandidatesRejected)),
		st.Row("Records", fmt.Sprintf("%d accepted, %d duplicates, %d unmergeable",
			sum.RecordsAccepted, sum.DuplicatesDiscarded, sum.Unmergeable)),
		st.Row("Duration", result.Duration().Round(time.Millisecond).String()),
		st.Row("Output", path),
	}
	cmd.Println(st.Box.Render(strings.Join(lines, "\n")))

	for i, f := range result.Failures {
		if i == maxFailuresShown {
			cmd.Println(st.Muted.Render(fmt.Sprintf("  ... and %d more failed chunks", len(result.Failures)-i)))
			break
		}
		cmd.Println(st.Muted.Render(fmt.Sprintf("  chunk %d (offset %d): %s", f.ChunkIndex, f.Offset, f.Reason)))
	}

	outcome := result.Outcome()
	switch outcome {
	case domain.OutcomeAllFailed:
		cmd.Println(st.Outcome(outcome).Render(
			"Warning: every chunk failed, so no records could be extracted. Check the model with 'valvex models'."))
	case domain.OutcomeNoMatches:
		cmd.Println(st.Outcome(outcome).Render("No records found in the document."))
	}
	if result.Status == domain.RunCancelled {
		cmd.Println(st.Warning.Render("Run cancelled; the output holds the records found so far."))
	}
}
