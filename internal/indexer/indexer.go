// Package indexer implements the orchestrator (C7): it drives the
// scanner, classifies files as new/modified/unchanged/deleted, and
// coordinates the dual-store write (vector store, then metadata)
// that keeps the two backends consistent without a distributed
// transaction.
package indexer

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/directory-indexer/directory-indexer/internal/embed"
	"github.com/directory-indexer/directory-indexer/internal/errs"
	"github.com/directory-indexer/directory-indexer/internal/pathutil"
	"github.com/directory-indexer/directory-indexer/internal/scanner"
	"github.com/directory-indexer/directory-indexer/internal/store"
	"github.com/directory-indexer/directory-indexer/internal/vectorstore"
)

// Result is the summary returned by Index, per spec §4.7.
type Result struct {
	Indexed int
	Skipped int
	Deleted int
	Failed  int
	Errors  []string
}

// Options configures an Indexer; it is fixed at New and applies to
// every Index call.
type Options struct {
	ChunkSize      int
	Overlap        int
	MaxFileSize    int64
	Concurrency    int
	BatchSize      int
	CollectionName string
	TextExtensions map[string]struct{}
}

// Indexer orchestrates C6 -> C1 -> C5 -> C3+C4.
type Indexer struct {
	scanner  *scanner.Scanner
	metadata store.MetadataStore
	vectors  *vectorstore.Client
	embedder embed.Embedder
	opts     Options
}

// New builds an Indexer from its wired components.
func New(sc *scanner.Scanner, metadata store.MetadataStore, vectors *vectorstore.Client, embedder embed.Embedder, opts Options) *Indexer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = embed.DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Indexer{scanner: sc, metadata: metadata, vectors: vectors, embedder: embedder, opts: opts}
}

// Index runs the full index algorithm over every root. A root that
// doesn't exist is reported but other roots still proceed.
func (ix *Indexer) Index(ctx context.Context, roots []string) (Result, error) {
	var total Result
	var anyRootMissing bool

	if err := ix.vectors.EnsureCollection(ctx, ix.opts.CollectionName, ix.embedder.Dimensions()); err != nil {
		return total, err
	}

	for _, root := range roots {
		norm, err := pathutil.Normalize(root)
		if err != nil {
			total.Errors = append(total.Errors, fmt.Sprintf("%s: %v", root, err))
			anyRootMissing = true
			continue
		}
		info, statErr := os.Stat(norm)
		if statErr != nil || !info.IsDir() {
			total.Errors = append(total.Errors, fmt.Sprintf("%s: root does not exist", norm))
			anyRootMissing = true
			continue
		}

		res, err := ix.indexRoot(ctx, norm)
		if err != nil {
			return total, err
		}
		total.Indexed += res.Indexed
		total.Skipped += res.Skipped
		total.Deleted += res.Deleted
		total.Failed += res.Failed
		total.Errors = append(total.Errors, res.Errors...)
	}

	if total.Indexed == 0 && total.Skipped == 0 && total.Deleted == 0 && anyRootMissing {
		return total, errs.UserInput("no root could be indexed").WithHint("check that the given paths exist")
	}
	return total, nil
}

func (ix *Indexer) indexRoot(ctx context.Context, root string) (Result, error) {
	var res Result

	if err := ix.metadata.UpsertDirectory(ctx, root, store.StatusIndexing, 0); err != nil {
		return res, err
	}

	candidates, errc := ix.scanner.Scan(ctx, root)
	current := make(map[string]candidateInfo)
	for c := range candidates {
		if c.TooLarge {
			continue
		}
		current[c.Path] = candidateInfo{size: c.Size, modifiedTime: c.ModifiedTime}
	}
	if err := <-errc; err != nil {
		_ = ix.metadata.UpsertDirectory(ctx, root, store.StatusFailed, 0)
		return res, errs.Wrap(errs.KindFileProcessing, "scan failed", err).WithIdentifier(root)
	}

	stored, err := ix.metadata.FilesUnder(ctx, root)
	if err != nil {
		_ = ix.metadata.UpsertDirectory(ctx, root, store.StatusFailed, 0)
		return res, err
	}
	storedByPath := make(map[string]*store.File, len(stored))
	for _, f := range stored {
		storedByPath[f.Path] = f
	}

	// Deletion reconciliation: paths in stored but not in current.
	for path := range storedByPath {
		if _, ok := current[path]; ok {
			continue
		}
		if err := ix.vectors.DeleteByFilePath(ctx, ix.opts.CollectionName, path); err != nil {
			res.Errors = append(res.Errors, err.Error())
		}
		if err := ix.metadata.DeleteFile(ctx, path); err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		res.Deleted++
	}

	var toProcess []string
	for path := range current {
		stored, existed := storedByPath[path]
		if !existed {
			toProcess = append(toProcess, path)
			continue
		}
		// Classify by content hash rather than modified_time, so an
		// mtime-only change is skipped without re-embedding and a content
		// change that kept its mtime is still reprocessed.
		hash, herr := hashFile(path)
		if herr != nil || hash != stored.ContentHash {
			toProcess = append(toProcess, path)
			continue
		}
		res.Skipped++
	}

	sem := make(chan struct{}, ix.opts.Concurrency)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, path := range toProcess {
		path := path
		existing := storedByPath[path]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				return
			default:
			}

			outcome := ix.processFile(ctx, root, path, existing)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeIndexed:
				res.Indexed++
			case outcomeSkippedText:
				res.Skipped++
			case outcomeFailed:
				res.Failed++
			}
		}()
	}
	wg.Wait()

	status := store.StatusCompleted
	if err := ix.metadata.UpsertDirectory(ctx, root, status, nowSeconds()); err != nil {
		return res, err
	}
	return res, nil
}

type candidateInfo struct {
	size         int64
	modifiedTime int64
}

type fileOutcome int

const (
	outcomeIndexed fileOutcome = iota
	outcomeSkippedText
	outcomeFailed
)

func (ix *Indexer) processFile(ctx context.Context, root, path string, existing *store.File) fileOutcome {
	data, err := os.ReadFile(path)
	if err != nil {
		f := &store.File{Path: path, ParentDirs: ancestryChain(root, path), Errors: []string{err.Error()}}
		_ = ix.metadata.UpsertFile(ctx, f)
		return outcomeFailed
	}

	if !pathutil.IsText(path, data, ix.opts.TextExtensions) {
		return outcomeSkippedText
	}

	contentHash := pathutil.HashBytes(data)

	chunks := pathutil.ChunkText(string(data), ix.opts.ChunkSize, ix.opts.Overlap)

	if existing != nil {
		// Step 6e: delete prior points before re-upsert, to keep dense
		// chunk_index semantics for the replacement set.
		if err := ix.vectors.DeleteByFilePath(ctx, ix.opts.CollectionName, path); err != nil {
			f := &store.File{Path: path, Size: int64(len(data)), ModifiedTime: modTime(path), ContentHash: contentHash,
				ParentDirs: ancestryChain(root, path), Errors: []string{err.Error()}}
			_ = ix.metadata.UpsertFile(ctx, f)
			return outcomeFailed
		}
	}

	info, statErr := os.Stat(path)
	var mtime int64
	if statErr == nil {
		mtime = info.ModTime().Unix()
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	var vectors [][]float32
	for start := 0; start < len(texts); start += ix.batchSize() {
		end := start + ix.batchSize()
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := ix.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			f := &store.File{Path: path, Size: int64(len(data)), ModifiedTime: mtime, ContentHash: contentHash,
				ParentDirs: ancestryChain(root, path), Errors: []string{err.Error()}}
			_ = ix.metadata.UpsertFile(ctx, f)
			return outcomeFailed
		}
		vectors = append(vectors, batch...)
	}

	points := make([]vectorstore.Point, len(chunks))
	refs := make([]store.ChunkRef, len(chunks))
	for i, c := range chunks {
		id := pathutil.DerivePointID(contentHash, c.Index)
		points[i] = vectorstore.Point{
			ID:     id.String(),
			Vector: vectors[i],
			Payload: map[string]any{
				"file_path":          path,
				"chunk_id":           c.Index,
				"file_hash":          contentHash,
				"parent_directories": ancestryChain(root, path),
			},
		}
		refs[i] = store.ChunkRef{Index: c.Index, StartByte: c.StartByte, EndByte: c.EndByte, PointID: id.String()}
	}

	if len(points) > 0 {
		if err := ix.vectors.Upsert(ctx, ix.opts.CollectionName, points); err != nil {
			f := &store.File{Path: path, Size: int64(len(data)), ModifiedTime: mtime, ContentHash: contentHash,
				ParentDirs: ancestryChain(root, path), Errors: []string{err.Error()}}
			_ = ix.metadata.UpsertFile(ctx, f)
			return outcomeFailed
		}
	}

	f := &store.File{
		Path:         path,
		Size:         int64(len(data)),
		ModifiedTime: mtime,
		ContentHash:  contentHash,
		ParentDirs:   ancestryChain(root, path),
		Chunks:       refs,
	}
	if err := ix.metadata.UpsertFile(ctx, f); err != nil {
		return outcomeFailed
	}
	return outcomeIndexed
}

func (ix *Indexer) batchSize() int {
	if ix.opts.BatchSize <= 0 {
		return embed.DefaultBatchSize
	}
	return ix.opts.BatchSize
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return pathutil.HashBytes(data), nil
}

func modTime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().Unix()
}

// ancestryChain returns the chain of ancestor normalized paths from
// root up to and including the file's immediate parent.
func ancestryChain(root, path string) []string {
	var chain []string
	dir := parentOf(path)
	for {
		chain = append([]string{dir}, chain...)
		if dir == root {
			break
		}
		parent := parentOf(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return chain
}
