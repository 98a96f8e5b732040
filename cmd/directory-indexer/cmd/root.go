// Package cmd provides the CLI commands for directory-indexer.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/directory-indexer/directory-indexer/internal/config"
	"github.com/directory-indexer/directory-indexer/internal/dispatch"
	"github.com/directory-indexer/directory-indexer/internal/embed"
	"github.com/directory-indexer/directory-indexer/internal/ignore"
	"github.com/directory-indexer/directory-indexer/internal/indexer"
	"github.com/directory-indexer/directory-indexer/internal/logging"
	"github.com/directory-indexer/directory-indexer/internal/pathutil"
	"github.com/directory-indexer/directory-indexer/internal/scanner"
	"github.com/directory-indexer/directory-indexer/internal/search"
	"github.com/directory-indexer/directory-indexer/internal/status"
	"github.com/directory-indexer/directory-indexer/internal/store"
	"github.com/directory-indexer/directory-indexer/internal/vectorstore"
	"github.com/directory-indexer/directory-indexer/internal/workspace"
)

var (
	flagVerbose bool
	flagDataDir string
)

// NewRootCmd creates the root command for the directory-indexer CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory-indexer",
		Short: "Semantic search over directory trees",
		Long: `directory-indexer scans directories, chunks and embeds their text
files, and serves semantic search, similarity, and content retrieval
over the result — via this CLI or an MCP stdio server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the metadata/database directory")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newSimilarCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newResetCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// buildDispatcher wires every component from process configuration,
// the way each teacher CLI command builds its own stores directly.
// The caller must call the returned close func once done.
func buildDispatcher() (*dispatch.Dispatcher, func(), error) {
	cfg, err := config.LoadEnv()
	if err != nil {
		return nil, nil, err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagVerbose {
		cfg.Verbose = true
	}
	slog.SetDefault(logging.Setup(cfg.Verbose))

	metadata, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, nil, err
	}

	vc := vectorstore.NewClient(cfg.VectorEndpoint, cfg.VectorAPIKey)

	embedder, err := embed.New(embed.Options{
		Provider: cfg.EmbeddingProvider,
		Endpoint: cfg.EmbeddingEndpoint,
		Model:    cfg.EmbeddingModel,
		APIKey:   cfg.OpenAIAPIKey,
		Dim:      cfg.EmbeddingDim,
	})
	if err != nil {
		_ = metadata.Close()
		return nil, nil, err
	}

	ws := workspace.DiscoverEnv()
	ignoreEngine := ignore.New(cfg.EssentialPatterns)
	sc := scanner.New(ignoreEngine, cfg.MaxFileSize)
	ix := indexer.New(sc, metadata, vc, embedder, indexer.Options{
		ChunkSize:      cfg.ChunkSize,
		Overlap:        cfg.Overlap,
		MaxFileSize:    cfg.MaxFileSize,
		Concurrency:    cfg.Concurrency,
		CollectionName: cfg.CollectionName,
		TextExtensions: pathutil.TextExtensions(nil),
	})
	se := search.New(embedder, vc, metadata, ws, cfg.CollectionName)
	st := status.New(vc, embedder, metadata, ws, cfg.CollectionName)

	d := &dispatch.Dispatcher{
		Config:     cfg,
		Indexer:    ix,
		Search:     se,
		Status:     st,
		Metadata:   metadata,
		Vectors:    vc,
		Embedder:   embedder,
		Workspaces: ws,
	}
	return d, func() { _ = metadata.Close() }, nil
}
