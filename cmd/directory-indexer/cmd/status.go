package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/directory-indexer/directory-indexer/internal/present"
)

func newStatusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report service health and index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, closeFn, err := buildDispatcher()
			if err != nil {
				return err
			}
			defer closeFn()

			st, err := d.Status(cmd.Context())
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}

			out := present.New(cmd.OutOrStdout())
			if st.Service.VectorStore {
				out.Success("vector store: reachable")
			} else {
				out.Error("vector store: unreachable")
			}
			if st.Service.Embedding {
				out.Success("embedding provider (" + st.Service.EmbeddingProvider + "): reachable")
			} else {
				out.Error("embedding provider (" + st.Service.EmbeddingProvider + "): unreachable")
			}
			out.Newline()
			out.Header("index")
			out.Line("directories: %d", st.Index.Directories)
			out.Line("files:       %d", st.Index.Files)
			out.Line("chunks:      %d", st.Index.Chunks)
			out.Line("size bytes:  %d", st.Index.SizeBytes)
			for _, dir := range st.Index.DirectorySummary {
				out.Line("  %s [%s]", dir.Path, dir.Status)
			}
			for _, issue := range st.Index.ConsistencyIssues {
				out.Warning(issue.FilePath + ": " + issue.Detail)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json")
	return cmd
}
