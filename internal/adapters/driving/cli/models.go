package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	modelsProvider string
	modelsBaseURL  string
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available at the LLM provider",
	Long: `Lists the models the configured provider can serve. The model used for
extraction is marked with an asterisk.`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	modelsCmd.Flags().StringVar(&modelsProvider, "provider", "", "LLM provider to query instead of the configured one")
	modelsCmd.Flags().StringVar(&modelsBaseURL, "base-url", "", "provider API endpoint")
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	if modelService == nil || settingsService == nil {
		return errors.New("model service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	llm := settings.LLM
	if cmd.Flags().Changed("provider") {
		if err := switchProvider(&llm, modelsProvider); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("base-url") {
		llm.BaseURL = modelsBaseURL
	}

	models, err := modelService.ListModels(cmd.Context(), llm)
	if err != nil {
		return withRunHint(err, llm)
	}

	if len(models) == 0 {
		cmd.Printf("No models available from %s.\n", llm.Provider.Description())
		return nil
	}

	cmd.Printf("Models available from %s:\n", llm.Provider.Description())
	for _, m := range models {
		marker := " "
		if m == llm.Model || m == llm.Model+":latest" {
			marker = "*"
		}
		cmd.Printf("  %s %s\n", marker, m)
	}
	return nil
}
