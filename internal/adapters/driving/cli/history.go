package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous extraction runs",
	Long:  `Lists previous extraction runs, most recent first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a run and its records",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete a run from the history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	cmd.Println("Previous runs:")
	cmd.Println()
	for i := range runs {
		run := &runs[i]
		cmd.Printf("  %s  %s  %-9s  %3d records  %s\n",
			run.ID, run.StartedAt.Local().Format(time.DateTime), run.Status,
			run.Summary.RecordsAccepted, run.Source)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	run, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	sum := run.Summary
	cmd.Printf("Run: %s\n", run.ID)
	cmd.Printf("  Status: %s\n", run.Status)
	cmd.Printf("  Model: %s\n", run.Model)
	cmd.Printf("  Source: %s\n", run.Source)
	cmd.Printf("  Schema: %s\n", run.Schema)
	cmd.Printf("  Started: %s\n", run.StartedAt.Local().Format(time.DateTime))
	cmd.Printf("  Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	cmd.Printf("  Chunks: %d/%d processed, %d failed\n", sum.ChunksProcessed, sum.ChunksTotal, sum.ChunksFailed)
	cmd.Printf("  Records: %d accepted, %d duplicates, %d unmergeable\n",
		sum.RecordsAccepted, sum.DuplicatesDiscarded, sum.Unmergeable)
	cmd.Println()

	if len(run.Records) == 0 {
		cmd.Println("No records.")
		return nil
	}

	for i, r := range run.Records {
		cmd.Printf("[%d] chunk %d\n", i+1, r.ChunkIndex)
		printRecord(cmd, run.Fields, r)
	}
	return nil
}

// printRecord prints the non-null fields of r in field order.
func printRecord(cmd *cobra.Command, fields []string, r domain.Record) {
	for _, f := range fields {
		if v := r.Value(f); v != nil {
			cmd.Printf("  %s: %s\n", f, domain.FormatValue(v))
		}
	}
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	if err := historyService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	cmd.Printf("Deleted run %s\n", args[0])
	return nil
}
