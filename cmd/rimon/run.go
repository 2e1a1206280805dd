package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liorgins/rimon-api/internal/pipeline"
)

var runFlags commonFlags

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full collection pipeline end-to-end",
	Long: `Orchestrates the entire collection process: fetch -> snapshot -> delta -> field changes -> dictionary.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

func init() {
	runFlags.register(runCommand)
	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := runFlags.resolve(cmd)
	if err != nil {
		return err
	}
	if cfg.APIURL == "" {
		return fmt.Errorf("--api-url must be provided (via flag, config or RIMON_API_URL)")
	}

	opts, cleanup, err := newPipelineOptions(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return pipeline.Run(ctx, opts)
}
