package cmd

import (
	"fmt"

	"github.com/rustyeddy/tfcandle/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage tfcandle configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  tfcandle config init -o tfcandle.yaml
  tfcandle config validate -f tfcandle.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "tfcandle.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  tfcandle serve --config %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Storage: %s (%s)\n", cfg.Storage.Backend, cfg.Storage.Root)
	fmt.Fprintf(out, "  Server: %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "  Timeframe: %d\n", cfg.Aggregate.DefaultTimeframe)
	return nil
}
