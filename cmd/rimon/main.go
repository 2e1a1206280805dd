// Package main provides the entry point for the Rimon catalog collector CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rimon",
	Short: "Rimon catalog snapshot and delta collector",
	Long:  "Rimon periodically snapshots a remote e-commerce catalog, computes added/removed/changed deltas between runs, reports field-level product changes and maintains translation dictionaries.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
