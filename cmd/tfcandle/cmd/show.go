package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored candle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.intake.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("encode candle: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
