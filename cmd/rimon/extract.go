package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liorgins/rimon-api/internal/pipeline"
)

var extractFlags commonFlags

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetch the catalog and materialize a new snapshot run",
	Long:  "Fetch the catalog API, create a timestamped run directory and write the raw document plus JSON and CSV exports of the current categories and products.",
	RunE:  runExtract,
}

func init() {
	extractFlags.register(extractCmd)
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := extractFlags.resolve(cmd)
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

	result, err := pipeline.Extract(ctx, opts)
	if err != nil {
		return err
	}

	opts.Printer.PrintExtractionSummary(result.Run.ID,
		len(result.Sections.Categories), len(result.Sections.Products))
	fmt.Fprintf(os.Stdout, "Snapshot written to: %s\n", result.Run.Dir)
	return nil
}
