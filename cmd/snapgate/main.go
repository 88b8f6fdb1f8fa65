// Package main is the entry point for the snapgate CLI.
//
// Snapgate can be used either as a library (SDK) or as a standalone
// binary driving builds from a YAML configuration file. This CLI provides
// the standalone binary approach.
//
// Usage:
//
//	snapgate upload ./static --build <id> -c config.yaml  # Upload resources
//	snapgate wait --build <id> -c config.yaml             # Wait for completion
//	snapgate validate -c config.yaml                      # Validate configuration
//	snapgate version                                      # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhollis/snapgate"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "snapgate",
	Short: "Client for the Snapgate visual-testing API",
	Long: `Snapgate drives visual-testing builds from the command line.

It creates builds, uploads content-addressed resources with bounded
concurrency, and waits for server-side processing to finish.

Quick start:
  1. Create a config file (snapgate.yaml) with your API token
  2. Run: snapgate upload ./static --build <id> -c snapgate.yaml
  3. Run: snapgate wait --build <id> -c snapgate.yaml

Example config:
  token: ${SNAPGATE_TOKEN}
  concurrency: 4
  poll_interval: 2s`,
	// No Run/RunE means this just shows help when called without subcommands
}

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this snapgate binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("snapgate %s (sdk %s)\n", version, snapgate.Version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
