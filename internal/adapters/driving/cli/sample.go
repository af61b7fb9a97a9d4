package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/valvex/internal/sample"
)

var (
	sampleOutput string
	sampleRows   int
	sampleSeed   uint64
	sampleRatio  float64
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a messy valve spreadsheet to try extraction on",
	Long: `Writes an Excel workbook that looks like an operations log: dates, IDs,
departments and free-form notes, most of which describe a valve. The notes
are spread over differently named columns in shuffled order.

Extract from it with:
  valvex extract messy_valve_data.xlsx --column '*'`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "messy_valve_data.xlsx", "output file")
	sampleCmd.Flags().IntVarP(&sampleRows, "rows", "n", sample.DefaultRows, "number of rows")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 1, "random seed")
	sampleCmd.Flags().Float64Var(&sampleRatio, "valve-ratio", sample.DefaultValveRatio, "share of rows describing a valve")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, _ []string) error {
	f, err := os.Create(sampleOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", sampleOutput, err)
	}

	table, err := sample.WriteXLSX(f, sample.Options{
		Rows:       sampleRows,
		Seed:       sampleSeed,
		ValveRatio: sampleRatio,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(sampleOutput)
		return fmt.Errorf("failed to write sample: %w", err)
	}

	cmd.Printf("Generated %s: %d rows, %d with valve descriptions, %d columns\n",
		sampleOutput, len(table.Rows), len(table.Serials), len(table.Header))
	return nil
}
