// Package cli implements the valvex command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/valvex/internal/core/ports/driving"
	"github.com/custodia-labs/valvex/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Services used by the commands. Set by SetServices before Execute.
var (
	extractionService driving.ExtractionService
	documentService   driving.DocumentService
	exportService     driving.ExportService
	settingsService   driving.SettingsService
	historyService    driving.HistoryService
	modelService      driving.ModelService
	schemaService     driving.SchemaService
)

var (
	verbose bool
	logJSON bool
)

// Services holds the core services the commands drive.
type Services struct {
	Extraction driving.ExtractionService
	Documents  driving.DocumentService
	Export     driving.ExportService
	Settings   driving.SettingsService
	History    driving.HistoryService
	Models     driving.ModelService
	Schema     driving.SchemaService
}

var rootCmd = &cobra.Command{
	Use:   "valvex",
	Short: "Extract structured valve records from unstructured text",
	Long: `valvex reads free-form text or spreadsheets, splits them into chunks,
asks a language model to pull out valve records in a fixed schema, and merges
the results into one deduplicated record set.

Models can run locally with Ollama or in the cloud with OpenAI or Anthropic.
Results are written as JSON or as an Excel spreadsheet.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetJSON(logJSON)
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
}

// SetServices installs the services used by the commands.
func SetServices(s Services) {
	extractionService = s.Extraction
	documentService = s.Documents
	exportService = s.Export
	settingsService = s.Settings
	historyService = s.History
	modelService = s.Models
	schemaService = s.Schema
}

// SetVersion sets the version reported by 'valvex version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
