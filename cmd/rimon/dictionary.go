package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/liorgins/rimon-api/internal/pipeline"
)

var dictionaryFlags commonFlags

var dictionaryCmd = &cobra.Command{
	Use:   "dictionary",
	Short: "Build the translation dictionaries from the latest snapshot",
	Long:  "Append new product titles, category names and hierarchy titles from the latest run to the English-to-target-language dictionary CSVs, translating new terms via the configured translation service.",
	RunE:  runDictionary,
}

func init() {
	dictionaryFlags.register(dictionaryCmd)
	rootCmd.AddCommand(dictionaryCmd)
}

func runDictionary(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := dictionaryFlags.resolve(cmd)
	if err != nil {
		return err
	}

	opts, cleanup, err := newPipelineOptions(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := pipeline.Dictionary(ctx, opts)
	if err != nil {
		return err
	}

	opts.Printer.PrintDictionarySummary(stats.Products, stats.Categories, stats.Hierarchy, stats.Translated)
	return nil
}
