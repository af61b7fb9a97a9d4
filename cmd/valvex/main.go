// Command valvex extracts structured valve records from unstructured text.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/custodia-labs/valvex/internal/adapters/driven/ai"
	"github.com/custodia-labs/valvex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/valvex/internal/adapters/driven/jsonschema"
	"github.com/custodia-labs/valvex/internal/adapters/driven/sink/jsonsink"
	"github.com/custodia-labs/valvex/internal/adapters/driven/sink/tabular"
	"github.com/custodia-labs/valvex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/valvex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/valvex/internal/adapters/driving/cli"
	"github.com/custodia-labs/valvex/internal/chunking"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/core/services"
	"github.com/custodia-labs/valvex/internal/logger"
	"github.com/custodia-labs/valvex/internal/readers"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	defer logger.Sync()

	home, err := file.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Configuration falls back to memory when the home directory is not writable
	var configStore driven.ConfigStore
	if store, err := file.NewConfigStore(home); err != nil {
		logger.Warn("Config file unavailable, using defaults: %v", err)
		configStore = memory.NewConfigStore()
	} else {
		configStore = store
	}

	var promptStore driven.PromptStore
	if store, err := file.NewPromptStore(filepath.Join(home, "prompts")); err != nil {
		logger.Warn("Prompt templates unavailable, using built-ins: %v", err)
	} else {
		promptStore = store
	}

	// Run history
	var runStore driven.RunStore
	if store, err := sqlite.NewStore(filepath.Join(home, "data")); err != nil {
		logger.Warn("Run history unavailable, keeping it in memory: %v", err)
		runStore = memory.NewRunStore()
	} else {
		runStore = store
	}
	defer runStore.Close()

	shaper := jsonschema.NewShaper()
	llmFactory := ai.NewFactory()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Extraction: services.NewExtractionService(
			llmFactory,
			chunking.NewDefaultRegistry(),
			shaper,
			promptStore,
			runStore,
		),
		Documents: services.NewDocumentService(readers.NewDefaultSource(readers.WithStdin(os.Stdin))),
		Export:    services.NewExportService(jsonsink.New(), tabular.New()),
		Settings:  services.NewSettingsService(configStore, ai.NewConfigValidator()),
		History:   services.NewHistoryService(runStore),
		Models:    services.NewModelService(llmFactory),
		Schema:    services.NewSchemaService(file.NewSchemaLoader(), shaper),
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		runStore.Close()
		logger.Sync()
		os.Exit(1)
	}
}
