package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/directory-indexer/directory-indexer/internal/dispatch"
	"github.com/directory-indexer/directory-indexer/internal/present"
	"github.com/directory-indexer/directory-indexer/internal/search"
)

type searchOptions struct {
	limit      int
	workspace  string
	minScore   float64
	pathPrefix string
	format     string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index for files semantically similar to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "maximum number of results")
	cmd.Flags().StringVarP(&opts.workspace, "workspace", "w", "", "restrict results to a named workspace")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "minimum cosine similarity score")
	cmd.Flags().StringVar(&opts.pathPrefix, "path-prefix", "", "restrict results to a literal path prefix")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	d, closeFn, err := buildDispatcher()
	if err != nil {
		return err
	}
	defer closeFn()

	results, err := d.SearchQuery(cmd.Context(), dispatch.SearchArgs{
		Query: query, Limit: opts.limit, Workspace: opts.workspace,
		MinScore: opts.minScore, PathPrefix: opts.pathPrefix,
	})
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return formatSearchResults(cmd, query, results)
}

func formatSearchResults(cmd *cobra.Command, query string, results []search.Result) error {
	out := present.New(cmd.OutOrStdout())
	if len(results) == 0 {
		out.Dim(fmt.Sprintf("no results for %q", query))
		return nil
	}
	out.Header(fmt.Sprintf("%d results for %q", len(results), query))
	for i, r := range results {
		out.Line("%d. %s (score: %.3f, %d chunks)", i+1, r.FilePath, r.Score, r.TotalChunks)
	}
	return nil
}
