package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/directory-indexer/directory-indexer/internal/dispatch"
)

func newSimilarCmd() *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "similar <path>",
		Short: "Find files similar to an indexed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, closeFn, err := buildDispatcher()
			if err != nil {
				return err
			}
			defer closeFn()

			results, err := d.Similar(cmd.Context(), dispatch.SimilarArgs{FilePath: args[0], Limit: limit})
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return formatSearchResults(cmd, args[0], results)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json")
	return cmd
}
