package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/directory-indexer/directory-indexer/internal/dispatch"
	"github.com/directory-indexer/directory-indexer/internal/present"
)

func newResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the vector store collection and metadata store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, closeFn, err := buildDispatcher()
			if err != nil {
				return err
			}
			defer closeFn()

			out := present.New(cmd.OutOrStdout())
			if !force {
				out.Warning(fmt.Sprintf("this deletes the %q vector collection and all metadata", d.Config.CollectionName))
				fmt.Fprint(cmd.OutOrStdout(), "continue? [y/N] ")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, _ := reader.ReadString('\n')
				if strings.TrimSpace(strings.ToLower(line)) != "y" {
					out.Dim("aborted")
					return nil
				}
				force = true
			}

			res, err := d.Reset(cmd.Context(), dispatch.ResetArgs{Force: force})
			if err != nil {
				return err
			}
			if res.VectorStoreCleared {
				out.Success("vector store cleared")
			} else {
				out.Warning("vector store not cleared (unreachable?)")
			}
			if res.MetadataCleared {
				out.Success("metadata store cleared")
			} else {
				out.Warning("metadata store not cleared")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")
	return cmd
}
