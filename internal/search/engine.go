// Package search implements the search engine (C8): query embedding,
// vector search, metadata join, workspace filtering, and result
// shaping, plus the similar-file and chunk-addressable content
// lookups that share its pipeline.
package search

import (
	"context"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/directory-indexer/directory-indexer/internal/embed"
	"github.com/directory-indexer/directory-indexer/internal/errs"
	"github.com/directory-indexer/directory-indexer/internal/pathutil"
	"github.com/directory-indexer/directory-indexer/internal/store"
	"github.com/directory-indexer/directory-indexer/internal/vectorstore"
	"github.com/directory-indexer/directory-indexer/internal/workspace"
)

// ChunkHit is one matching chunk within a result file.
type ChunkHit struct {
	ChunkID int     `json:"chunk_id"`
	Score   float64 `json:"score"`
}

// Result is one file-level search hit.
type Result struct {
	FilePath     string     `json:"file_path"`
	Score        float64    `json:"score"`
	Size         int64      `json:"size"`
	TotalChunks  int        `json:"total_chunks"`
	MatchingHits []ChunkHit `json:"matching_chunks"`
}

// Options configures a Search call.
type Options struct {
	Limit      int
	Workspace  string
	MinScore   float64
	PathPrefix string
}

// Engine wires the components Search/Similar/GetContent need.
type Engine struct {
	embedder   embed.Embedder
	vectors    *vectorstore.Client
	metadata   store.MetadataStore
	workspaces *workspace.Registry
	collection string
}

// New builds a search Engine.
func New(embedder embed.Embedder, vectors *vectorstore.Client, metadata store.MetadataStore, workspaces *workspace.Registry, collection string) *Engine {
	return &Engine{embedder: embedder, vectors: vectors, metadata: metadata, workspaces: workspaces, collection: collection}
}

// Search embeds query, over-fetches the vector store, groups hits by
// file, applies workspace/path filters, joins metadata, and returns
// results sorted by file-score descending, truncated to opts.Limit.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var prefixes []string
	if opts.Workspace != "" {
		p, err := e.workspaces.Resolve(opts.Workspace)
		if err != nil {
			return nil, err
		}
		prefixes = p
	}
	if opts.PathPrefix != "" {
		prefixes = append(prefixes, opts.PathPrefix)
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return e.searchVector(ctx, vec, limit, opts.MinScore, prefixes, "")
}

// searchVector runs the over-fetch/group/filter/join/sort pipeline
// shared by Search and Similar. excludePath, when non-empty, drops
// hits for that exact file_path.
func (e *Engine) searchVector(ctx context.Context, vec []float32, limit int, minScore float64, prefixes []string, excludePath string) ([]Result, error) {
	overFetch := limit * 3
	if overFetch < 10 {
		overFetch = 10
	}
	if overFetch > 300 {
		overFetch = 300
	}

	hits, err := e.vectors.Search(ctx, e.collection, vec, overFetch, nil)
	if err != nil {
		return nil, err
	}

	type grouped struct {
		fileScore float64
		chunks    []ChunkHit
	}
	byFile := make(map[string]*grouped)
	for _, h := range hits {
		if h.Score < minScore {
			continue
		}
		path, _ := h.Payload["file_path"].(string)
		if path == "" {
			continue
		}
		if path == excludePath {
			continue
		}
		if len(prefixes) > 0 && !anyPrefix(path, prefixes) {
			continue
		}
		chunkID := 0
		if v, ok := h.Payload["chunk_id"].(float64); ok {
			chunkID = int(v)
		}
		g, ok := byFile[path]
		if !ok {
			g = &grouped{}
			byFile[path] = g
		}
		if h.Score > g.fileScore {
			g.fileScore = h.Score
		}
		g.chunks = append(g.chunks, ChunkHit{ChunkID: chunkID, Score: h.Score})
	}

	results := make([]Result, 0, len(byFile))
	for path, g := range byFile {
		f, err := e.metadata.GetFile(ctx, path)
		var size int64
		var totalChunks int
		if err == nil && f != nil {
			size = f.Size
			totalChunks = len(f.Chunks)
		}
		sort.Slice(g.chunks, func(i, j int) bool { return g.chunks[i].Score > g.chunks[j].Score })
		results = append(results, Result{
			FilePath:     path,
			Score:        g.fileScore,
			Size:         size,
			TotalChunks:  totalChunks,
			MatchingHits: g.chunks,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func anyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

// Similar looks up filePath in the metadata store, re-embeds each of
// its chunks (read from the file at the recorded byte offsets), takes
// the mean of those vectors, and runs the same pipeline as Search,
// excluding the input file. There is no single-chunk fallback: if no
// recorded chunk range can be read, it returns a NotFound error.
func (e *Engine) Similar(ctx context.Context, filePath string, limit int) ([]Result, error) {
	norm, err := pathutil.Normalize(filePath)
	if err != nil {
		return nil, errs.UserInput("invalid file path").WithIdentifier(filePath)
	}
	f, err := e.metadata.GetFile(ctx, norm)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errs.NotFound("file not indexed").WithIdentifier(norm).WithHint("run index on this file's directory first")
	}
	if len(f.Chunks) == 0 {
		return nil, errs.NotFound("file has no indexed chunks").WithIdentifier(norm)
	}

	data, err := os.ReadFile(norm)
	if err != nil {
		return nil, errs.Wrap(errs.KindFileProcessing, "failed to read file", err).WithIdentifier(norm)
	}

	var texts []string
	for _, c := range f.Chunks {
		if c.StartByte >= 0 && c.EndByte <= len(data) && c.StartByte <= c.EndByte {
			texts = append(texts, string(data[c.StartByte:c.EndByte]))
		}
	}
	if len(texts) == 0 {
		return nil, errs.NotFound("file has no readable chunk ranges").WithIdentifier(norm)
	}

	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	mean := meanVector(vectors)

	if limit <= 0 {
		limit = 10
	}
	return e.searchVector(ctx, mean, limit, 0, nil, norm)
}

func meanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	if len(vectors) == 1 {
		return vectors[0]
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			if i < dim {
				sum[i] += float64(x)
			}
		}
	}
	mean := make([]float32, dim)
	for i, s := range sum {
		mean[i] = float32(s / float64(len(vectors)))
	}
	return mean
}

// GetContent returns a file's raw content. When chunkRange is empty,
// the entire file is returned. Otherwise chunkRange ("N" or "M-N",
// 1-based inclusive) slices the recorded ChunkRef byte ranges if the
// file is indexed, or falls back to 1-based line slicing otherwise.
func (e *Engine) GetContent(ctx context.Context, filePath, chunkRange string) (string, error) {
	norm, err := pathutil.Normalize(filePath)
	if err != nil {
		return "", errs.UserInput("invalid file path").WithIdentifier(filePath)
	}
	data, err := os.ReadFile(norm)
	if err != nil {
		return "", errs.Wrap(errs.KindFileProcessing, "failed to read file", err).WithIdentifier(norm)
	}

	if chunkRange == "" {
		return string(data), nil
	}

	lo, hi, err := parseRange(chunkRange)
	if err != nil {
		return "", err
	}

	f, _ := e.metadata.GetFile(ctx, norm)
	if f != nil && len(f.Chunks) > 0 {
		if lo < 1 || hi > len(f.Chunks) || lo > hi {
			return "", errs.UserInput("chunk range out of bounds").WithIdentifier(chunkRange)
		}
		var sb strings.Builder
		for i := lo; i <= hi; i++ {
			c := f.Chunks[i-1]
			if c.StartByte < 0 || c.EndByte > len(data) || c.StartByte > c.EndByte {
				return "", errs.UserInput("chunk range out of bounds").WithIdentifier(chunkRange)
			}
			sb.WriteString(string(data[c.StartByte:c.EndByte]))
		}
		return sb.String(), nil
	}

	lines := strings.Split(string(data), "\n")
	if lo < 1 || hi > len(lines) || lo > hi {
		return "", errs.UserInput("chunk range out of bounds").WithIdentifier(chunkRange)
	}
	return strings.Join(lines[lo-1:hi], "\n"), nil
}

func parseRange(s string) (int, int, error) {
	if idx := strings.Index(s, "-"); idx >= 0 {
		loStr, hiStr := s[:idx], s[idx+1:]
		lo, err1 := strconv.Atoi(strings.TrimSpace(loStr))
		hi, err2 := strconv.Atoi(strings.TrimSpace(hiStr))
		if err1 != nil || err2 != nil {
			return 0, 0, errs.UserInput("invalid chunk range syntax").WithIdentifier(s)
		}
		return lo, hi, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, 0, errs.UserInput("invalid chunk range syntax").WithIdentifier(s)
	}
	return n, n, nil
}
