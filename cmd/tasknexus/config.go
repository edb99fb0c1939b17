package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validates a tasknexus configuration file for syntax errors and invalid values.

Examples:
  tasknexus config validate                       # Validates default config locations
  tasknexus config validate -c tasknexus.toml     # Validates specific file
  tasknexus config validate -c .tasknexus/tasknexus.yaml`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Shows the merged configuration from defaults and config file.

Examples:
  tasknexus config show                    # Show effective config
  tasknexus config show -c tasknexus.toml  # Show config from specific file`,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func configLoadOptions() []config.LoadOption {
	if cfgFile != "" {
		return []config.LoadOption{config.WithPath(cfgFile)}
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	result, err := config.LoadConfig(configLoadOptions()...)
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.Green("Configuration valid: %s", result.Source)
	} else {
		color.Yellow("No config file found. Default configuration is valid.")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Mapping fingerprint: %s\n", result.Config.Fingerprint())
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	result, err := config.LoadConfig(configLoadOptions()...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Source != "" {
		fmt.Fprintf(out, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(out, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(out, string(content))
	return nil
}
