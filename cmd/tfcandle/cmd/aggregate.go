package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <file>",
	Short: "Aggregate the first N rows of a price file",
	Long: `Copy a CSV or XLSX price file into storage, fold its first --timeframe
data rows into one candle and persist it with the configured backend.

The candle is printed as JSON.

Example:
  tfcandle aggregate data/banknifty.csv --timeframe 15`,
	Args: cobra.ExactArgs(1),
	RunE: runAggregate,
}

var aggTimeframe int

func init() {
	rootCmd.AddCommand(aggregateCmd)

	aggregateCmd.Flags().IntVarP(&aggTimeframe, "timeframe", "n", 0, "number of rows to aggregate (default from config)")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	n := a.cfg.Aggregate.DefaultTimeframe
	if cmd.Flags().Changed("timeframe") {
		n = aggTimeframe
	}

	res, err := a.intake.ProcessFile(cmd.Context(), args[0], n)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res.Candle, "", "  ")
	if err != nil {
		return fmt.Errorf("encode candle: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	fmt.Fprintf(cmd.ErrOrStderr(), "stored %s\n", res.Artifact)
	return nil
}
