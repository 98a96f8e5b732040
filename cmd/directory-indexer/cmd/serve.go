package cmd

import (
	"github.com/spf13/cobra"

	"github.com/directory-indexer/directory-indexer/internal/rpcserver"
	"github.com/directory-indexer/directory-indexer/pkg/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP stdio server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, closeFn, err := buildDispatcher()
			if err != nil {
				return err
			}
			defer closeFn()

			srv := rpcserver.New(d, version.Version)
			return srv.Run(cmd.Context())
		},
	}
}
