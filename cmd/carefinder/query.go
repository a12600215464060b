package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carefinder/carefinder/internal/domain/search/request"
	logpkg "github.com/carefinder/carefinder/internal/logger"
)

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var filters []string

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run the pipeline once and print the final state as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if err := request.ValidateQuery(query); err != nil {
				return err
			}
			caller, err := parseFilterFlags(filters)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer shutdown(a)

			ctx := logpkg.ContextWithLogger(cmd.Context(), a.Logger)
			st := a.Pipeline.Run(ctx, query, request.ParseFilters(caller))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(st)
		},
	}
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "caller filter key=value (repeatable), e.g. -f district=강남구")
	return cmd
}

// parseFilterFlags turns key=value pairs into a filter map. Values stay
// strings; filter parsing coerces booleans and integers.
func parseFilterFlags(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("filter %q must be key=value", p)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
