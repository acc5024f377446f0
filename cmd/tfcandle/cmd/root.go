package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tfcandle",
	Short: "Aggregate BANKNIFTY price rows into a single OHLCV candle",
	Long: `tfcandle reads a tabular price file (CSV or XLSX), folds its first
N rows into one open/high/low/close/volume candle and stores the result.

It can run once from the command line or serve an HTTP upload endpoint.

Configuration is read from the file given by --config and from TFCANDLE_*
environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
}
