package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhollis/snapgate/config"
)

// validateCmd validates a config file without touching the API.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a snapgate configuration file without contacting the API.

This command parses the YAML, expands environment variables, and
validates all fields. It's useful for CI/CD pipelines or pre-deployment
checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  snapgate validate -c config.yaml
  snapgate validate --config /etc/snapgate/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Base URL:          %s\n", cfg.BaseURL)
	fmt.Printf("  Concurrency:       %d\n", cfg.Concurrency)
	fmt.Printf("  Poll interval:     %s\n", cfg.PollInterval.Duration())
	fmt.Printf("  Staleness timeout: %s\n", cfg.StalenessTimeout.Duration())

	return nil
}
