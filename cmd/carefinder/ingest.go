package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	logpkg "github.com/carefinder/carefinder/internal/logger"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <registry.json>",
		Short: "Load the daycare registry export into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer shutdown(a)

			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("open registry export: %w", err)
			}
			defer func() { _ = f.Close() }()

			ctx := logpkg.ContextWithLogger(cmd.Context(), a.Logger)
			rep, err := a.Ingest.Ingest(ctx, f)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "records: %d, inserted: %d, updated: %d, skipped: %d\n",
				rep.Records, rep.Inserted, rep.Updated, rep.Skipped)
			return nil
		},
	}
}
