package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/directory-indexer/directory-indexer/internal/dispatch"
)

func newGetCmd() *cobra.Command {
	var chunks string

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Retrieve a file's content, optionally restricted to a chunk range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, closeFn, err := buildDispatcher()
			if err != nil {
				return err
			}
			defer closeFn()

			content, err := d.Get(cmd.Context(), dispatch.GetArgs{FilePath: args[0], Chunks: chunks})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}

	cmd.Flags().StringVar(&chunks, "chunks", "", "a 1-based chunk range, e.g. '2' or '2-4'")
	return cmd
}
