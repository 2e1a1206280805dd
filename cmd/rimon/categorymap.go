package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liorgins/rimon-api/internal/pipeline"
)

var (
	categoryMapFlags commonFlags
	categoryMapOut   string
)

var categoryMapCmd = &cobra.Command{
	Use:   "category-map",
	Short: "Write a parent-to-children category name map",
	Long:  "Build a JSON mapping from each parent category title to its child category titles, derived from the latest snapshot's flattened categories.",
	RunE:  runCategoryMap,
}

func init() {
	categoryMapFlags.register(categoryMapCmd)
	categoryMapCmd.Flags().StringVarP(&categoryMapOut, "out", "o", "category_map.json", "Output path for the category map")
	rootCmd.AddCommand(categoryMapCmd)
}

func runCategoryMap(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := categoryMapFlags.resolve(cmd)
	if err != nil {
		return err
	}

	opts, cleanup, err := newPipelineOptions(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	parents, err := pipeline.CategoryMap(ctx, opts, categoryMapOut)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Category map with %d parent(s) written to: %s\n", parents, categoryMapOut)
	return nil
}
