// Package status implements the status & prerequisites component
// (C10): aggregating the health of external services and the stored
// state the rest of the engine depends on.
package status

import (
	"context"
	"sort"

	"github.com/directory-indexer/directory-indexer/internal/embed"
	"github.com/directory-indexer/directory-indexer/internal/store"
	"github.com/directory-indexer/directory-indexer/internal/vectorstore"
	"github.com/directory-indexer/directory-indexer/internal/workspace"
)

// ServiceStatus reports whether the external services the engine
// depends on are reachable.
type ServiceStatus struct {
	VectorStore       bool   `json:"vector_store"`
	Embedding         bool   `json:"embedding"`
	EmbeddingProvider string `json:"embedding_provider"`
}

// DirectorySummary is one root's status for index_status.
type DirectorySummary struct {
	Path      string `json:"path"`
	Status    string `json:"status"`
	IndexedAt int64  `json:"indexed_at"`
	LastError string `json:"last_error,omitempty"`
}

// ConsistencyIssue records a file whose metadata cannot be tied to
// vector-store points: a chunk with no recorded point_id.
type ConsistencyIssue struct {
	FilePath string `json:"file_path"`
	Detail   string `json:"detail"`
}

// IndexStatus is the full aggregate returned by index_status.
type IndexStatus struct {
	Directories       int64                 `json:"directories"`
	Files             int64                 `json:"files"`
	Chunks            int64                 `json:"chunks"`
	SizeBytes         int64                 `json:"size_bytes"`
	DirectorySummary  []DirectorySummary    `json:"directory_summary"`
	Workspaces        []workspace.Workspace `json:"workspaces"`
	ConsistencyIssues []ConsistencyIssue    `json:"consistency_issues"`
}

// Checker aggregates service and index status.
type Checker struct {
	vectors    *vectorstore.Client
	embedder   embed.Embedder
	metadata   store.MetadataStore
	workspaces *workspace.Registry
	collection string
}

// New builds a Checker.
func New(vectors *vectorstore.Client, embedder embed.Embedder, metadata store.MetadataStore, workspaces *workspace.Registry, collection string) *Checker {
	return &Checker{vectors: vectors, embedder: embedder, metadata: metadata, workspaces: workspaces, collection: collection}
}

// ServiceStatus probes the vector store and the embedding provider.
func (c *Checker) ServiceStatus(ctx context.Context) ServiceStatus {
	vectorOK := c.vectors.Healthz(ctx)
	_, embedErr := c.embedder.Embed(ctx, "ping")
	return ServiceStatus{
		VectorStore:       vectorOK,
		Embedding:         embedErr == nil,
		EmbeddingProvider: c.embedder.Provider(),
	}
}

// IndexStatus aggregates counts, per-directory summaries, workspace
// health, and a consistency check over the metadata store: every chunk
// of a file without recorded errors must carry a point_id. The vector
// store's contents are not queried, so points missing from it, or
// points for files the metadata store no longer has, are not reported.
func (c *Checker) IndexStatus(ctx context.Context) (IndexStatus, error) {
	stats, err := c.metadata.Stats(ctx)
	if err != nil {
		return IndexStatus{}, err
	}

	dirs, err := c.metadata.ListDirectories(ctx)
	if err != nil {
		return IndexStatus{}, err
	}
	summaries := make([]DirectorySummary, 0, len(dirs))
	for _, d := range dirs {
		summaries = append(summaries, DirectorySummary{Path: d.Path, Status: string(d.Status), IndexedAt: d.IndexedAt})
	}

	files, err := c.metadata.AllFiles(ctx)
	if err != nil {
		return IndexStatus{}, err
	}

	var issues []ConsistencyIssue
	for _, f := range files {
		if len(f.Errors) > 0 {
			continue
		}
		for _, chunk := range f.Chunks {
			if chunk.PointID == "" {
				issues = append(issues, ConsistencyIssue{FilePath: f.Path, Detail: "chunk missing point_id"})
			}
		}
	}

	ws := c.workspaces.All()
	sort.Slice(ws, func(i, j int) bool { return ws[i].Name < ws[j].Name })

	return IndexStatus{
		Directories:       stats.Directories,
		Files:             stats.Files,
		Chunks:            stats.Chunks,
		SizeBytes:         stats.SizeBytes,
		DirectorySummary:  summaries,
		Workspaces:        ws,
		ConsistencyIssues: issues,
	}, nil
}
