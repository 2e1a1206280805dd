package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liorgins/rimon-api/internal/pipeline"
)

var changesFlags commonFlags

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Report field-level changes for changed products",
	Long:  "Recompute the product delta between the two latest runs and expand each changed product into one row per differing field, written as products_field_changes.csv with a unified-diff detail file for multiline values.",
	RunE:  runChanges,
}

func init() {
	changesFlags.register(changesCmd)
	rootCmd.AddCommand(changesCmd)
}

func runChanges(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := changesFlags.resolve(cmd)
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
	rows, err := pipeline.FieldChanges(ctx, opts, result)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Wrote %d field change row(s) for run %s\n", rows, result.CurrRun)
	return nil
}
