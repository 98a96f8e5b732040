package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/directory-indexer/directory-indexer/internal/dispatch"
	"github.com/directory-indexer/directory-indexer/internal/present"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <path>...",
		Short: "Index one or more directory trees",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args)
		},
	}
}

func runIndex(cmd *cobra.Command, paths []string) error {
	d, closeFn, err := buildDispatcher()
	if err != nil {
		return err
	}
	defer closeFn()

	out := present.New(cmd.OutOrStdout())
	res, err := d.Index(cmd.Context(), dispatch.IndexArgs{Roots: paths})
	if err != nil {
		return err
	}

	out.Header(fmt.Sprintf("indexed %d, skipped %d, deleted %d, failed %d", res.Indexed, res.Skipped, res.Deleted, res.Failed))
	for _, e := range res.Errors {
		out.Warning(e)
	}
	return nil
}
