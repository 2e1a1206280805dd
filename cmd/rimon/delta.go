package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/liorgins/rimon-api/internal/pipeline"
)

var deltaFlags commonFlags

var deltaCmd = &cobra.Command{
	Use:   "delta",
	Short: "Compute the delta between the two latest snapshot runs",
	Long:  "Compare the two most recent run snapshots and write added/removed/changed exports for categories, products and the cleaned category hierarchy into the current run's delta directory.",
	RunE:  runDelta,
}

func init() {
	deltaFlags.register(deltaCmd)
	rootCmd.AddCommand(deltaCmd)
}

func runDelta(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := deltaFlags.resolve(cmd)
	if err != nil {
		return err
	}

	opts, cleanup, err := newPipelineOptions(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := pipeline.Delta(ctx, opts)
	if err != nil {
		return err
	}

	opts.Printer.PrintDeltaSummary(result.PrevRun, result.CurrRun,
		pipeline.Counts(result.Categories),
		pipeline.Counts(result.Products),
		pipeline.Counts(result.Hierarchy))
	return nil
}
