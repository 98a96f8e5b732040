// Package dispatch implements the tool/command dispatch table (C11):
// a single Dispatcher struct exposing the operations that both the CLI
// and the RPC/MCP server call through, so return shapes are identical
// regardless of caller. The serve operation is not a Dispatcher method:
// package rpcserver wraps a Dispatcher in the stdio loop.
package dispatch

import (
	"context"

	"github.com/directory-indexer/directory-indexer/internal/config"
	"github.com/directory-indexer/directory-indexer/internal/embed"
	"github.com/directory-indexer/directory-indexer/internal/errs"
	"github.com/directory-indexer/directory-indexer/internal/indexer"
	"github.com/directory-indexer/directory-indexer/internal/search"
	"github.com/directory-indexer/directory-indexer/internal/status"
	"github.com/directory-indexer/directory-indexer/internal/store"
	"github.com/directory-indexer/directory-indexer/internal/vectorstore"
	"github.com/directory-indexer/directory-indexer/internal/workspace"
)

// Dispatcher holds every wired component and implements seven of the
// eight operations of spec §4.11 (all but serve).
type Dispatcher struct {
	Config     config.Config
	Indexer    *indexer.Indexer
	Search     *search.Engine
	Status     *status.Checker
	Metadata   store.MetadataStore
	Vectors    *vectorstore.Client
	Embedder   embed.Embedder
	Workspaces *workspace.Registry
}

// IndexArgs wraps indexer.Index's input for the dispatch surface; Index
// returns indexer.Result unchanged.
type IndexArgs struct {
	Roots []string
}

func (d *Dispatcher) Index(ctx context.Context, args IndexArgs) (indexer.Result, error) {
	if len(args.Roots) == 0 {
		return indexer.Result{}, errs.UserInput("no paths given to index")
	}
	return d.Indexer.Index(ctx, args.Roots)
}

type SearchArgs struct {
	Query      string
	Limit      int
	Workspace  string
	MinScore   float64
	PathPrefix string
}

func (d *Dispatcher) SearchQuery(ctx context.Context, args SearchArgs) ([]search.Result, error) {
	if args.Query == "" {
		return nil, errs.UserInput("search query must not be empty")
	}
	return d.Search.Search(ctx, args.Query, search.Options{
		Limit:      args.Limit,
		Workspace:  args.Workspace,
		MinScore:   args.MinScore,
		PathPrefix: args.PathPrefix,
	})
}

type SimilarArgs struct {
	FilePath string
	Limit    int
}

func (d *Dispatcher) Similar(ctx context.Context, args SimilarArgs) ([]search.Result, error) {
	if args.FilePath == "" {
		return nil, errs.UserInput("file path must not be empty")
	}
	return d.Search.Similar(ctx, args.FilePath, args.Limit)
}

type GetArgs struct {
	FilePath string
	Chunks   string
}

func (d *Dispatcher) Get(ctx context.Context, args GetArgs) (string, error) {
	if args.FilePath == "" {
		return "", errs.UserInput("file path must not be empty")
	}
	return d.Search.GetContent(ctx, args.FilePath, args.Chunks)
}

type StatusResult struct {
	Service status.ServiceStatus `json:"service"`
	Index   status.IndexStatus   `json:"index"`
}

func (d *Dispatcher) Status(ctx context.Context) (StatusResult, error) {
	idx, err := d.Status.IndexStatus(ctx)
	if err != nil {
		return StatusResult{}, err
	}
	return StatusResult{
		Service: d.Status.ServiceStatus(ctx),
		Index:   idx,
	}, nil
}

type ResetArgs struct {
	Force bool
}

type ResetResult struct {
	VectorStoreCleared bool
	MetadataCleared    bool
}

// Reset deletes the vector-store collection and truncates the
// metadata store. Without Force it aborts with a confirmation-required
// error; missing external services proceed best-effort and report
// partial success rather than aborting.
func (d *Dispatcher) Reset(ctx context.Context, args ResetArgs) (ResetResult, error) {
	if !args.Force {
		return ResetResult{}, errs.UserInput("confirmation required").WithHint("pass --force (CLI) or force=true (RPC) to confirm")
	}
	var res ResetResult
	if err := d.Vectors.DeleteCollection(ctx, d.Config.CollectionName); err == nil {
		res.VectorStoreCleared = true
	}
	if err := d.Metadata.Reset(ctx); err == nil {
		res.MetadataCleared = true
	}
	return res, nil
}

// ServerInfo is the server_info tool's output.
type ServerInfo struct {
	EmbeddingProvider string `json:"embedding_provider"`
	EmbeddingModel    string `json:"embedding_model"`
	Dimensions        int    `json:"dimensions"`
	CollectionName    string `json:"collection_name"`
	DataDir           string `json:"data_dir"`
}

func (d *Dispatcher) ServerInfo(_ context.Context) (ServerInfo, error) {
	return ServerInfo{
		EmbeddingProvider: d.Config.EmbeddingProvider,
		EmbeddingModel:    d.Config.EmbeddingModel,
		Dimensions:        d.Embedder.Dimensions(),
		CollectionName:    d.Config.CollectionName,
		DataDir:           d.Config.DataDir,
	}, nil
}
