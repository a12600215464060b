package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	logpkg "github.com/carefinder/carefinder/internal/logger"
)

func newBuildIndexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build-index",
		Short: "Embed active facilities and write the vector index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer shutdown(a)

			ctx := logpkg.ContextWithLogger(cmd.Context(), a.Logger)
			_, rep, err := a.Indexing.BuildAndSave(ctx, a.Config.Index.Dir, a.IndexFiles())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"indexed %d of %d active facilities (%d without text, %d failed chunks) in %s -> %s\n",
				rep.Indexed, rep.Facilities, rep.SkippedEmpty, rep.FailedChunks,
				rep.Duration.Round(time.Millisecond), a.Config.Index.Dir)
			return nil
		},
	}
}
