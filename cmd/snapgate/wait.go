package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mhollis/snapgate"
	"github.com/mhollis/snapgate/config"
)

// waitCmd blocks until a build reaches a terminal state.
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for a build to finish processing",
	Long: `Wait for a build to reach a terminal state.

The build is polled at the configured interval. The wait fails if the
build's state stops changing for longer than the staleness timeout;
slow builds that keep reporting progress never time out.

Exit codes:
  0 - Build finished successfully
  1 - Build failed, expired, stalled, or the wait was interrupted

Example:
  snapgate wait --build 1234 -c config.yaml`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)

	waitCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	waitCmd.Flags().String("build", "", "build ID to wait for (required)")
	_ = waitCmd.MarkFlagRequired("config")
	_ = waitCmd.MarkFlagRequired("build")
}

// newClient builds an SDK client from a CLI config file.
func newClient(cfg *config.Config) (*snapgate.Client, error) {
	return snapgate.New(
		snapgate.WithToken(cfg.Token),
		snapgate.WithBaseURL(cfg.BaseURL),
		snapgate.WithConcurrency(cfg.Concurrency),
		snapgate.WithPollInterval(cfg.PollInterval.Duration()),
		snapgate.WithStalenessTimeout(cfg.StalenessTimeout.Duration()),
		snapgate.WithHTTPTimeout(cfg.HTTPTimeout.Duration()),
		snapgate.WithLogger(newLogger()),
	)
}

func runWait(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	buildID, _ := cmd.Flags().GetString("build")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := newClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	// cancel the wait on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	final, err := client.WaitForBuild(ctx, buildID, func(b snapgate.Build) {
		logger.Info("build progress",
			"build_id", b.ID,
			"state", b.State.String(),
			"snapshots", b.TotalSnapshots,
			"comparisons", b.TotalComparisons,
		)
	})
	if err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}

	if final.State != snapgate.StateFinished {
		return fmt.Errorf("build %s ended in state %s: %s", final.ID, final.State, final.FailureReason)
	}

	fmt.Printf("Build %s finished: %s\n", final.ID, final.WebURL)
	return nil
}
