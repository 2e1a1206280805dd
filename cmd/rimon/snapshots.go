package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liorgins/rimon-api/internal/observability"
	"github.com/liorgins/rimon-api/internal/snapshot"
)

var snapshotsFlags commonFlags

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List discovered snapshot runs in chronological order",
	RunE:  runSnapshots,
}

func init() {
	snapshotsFlags.register(snapshotsCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

func runSnapshots(cmd *cobra.Command, _ []string) error {
	cfg, err := snapshotsFlags.resolve(cmd)
	if err != nil {
		return err
	}

	log, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store := snapshot.NewStore(cfg.RunsDir, log)
	ids, err := store.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintf(os.Stdout, "No runs found in %s\n", cfg.RunsDir)
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(os.Stdout, id)
	}
	return nil
}
