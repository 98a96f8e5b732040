package indexer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/directory-indexer/directory-indexer/internal/embed"
	"github.com/directory-indexer/directory-indexer/internal/ignore"
	"github.com/directory-indexer/directory-indexer/internal/pathutil"
	"github.com/directory-indexer/directory-indexer/internal/scanner"
	"github.com/directory-indexer/directory-indexer/internal/store"
	"github.com/directory-indexer/directory-indexer/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVectorServer is a minimal in-memory Qdrant-style REST fake.
type fakeVectorServer struct {
	mu     sync.Mutex
	points map[string]vectorstore.Point
	calls  int
}

func newFakeVectorServer() *httptest.Server {
	fv := &fakeVectorServer{points: make(map[string]vectorstore.Point)}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fv.mu.Lock()
		defer fv.mu.Unlock()
		fv.calls++
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/healthz":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && !filepathHasSuffix(r.URL.Path, "/points"):
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut:
			var body struct {
				Points []vectorstore.Point `json:"points"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			for _, p := range body.Points {
				fv.points[p.ID] = p
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && (filepathHasSuffix(r.URL.Path, "/search")):
			var body struct {
				Vector []float32 `json:"vector"`
				Limit  int       `json:"limit"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			var hits []map[string]any
			for _, p := range fv.points {
				hits = append(hits, map[string]any{"id": p.ID, "score": 0.5, "payload": p.Payload})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"result": hits})
		case r.Method == http.MethodPost && filepathHasSuffix(r.URL.Path, "/delete"):
			var body struct {
				Filter map[string]any `json:"filter"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Filter != nil {
				must, _ := body.Filter["must"].([]any)
				for _, m := range must {
					cond, _ := m.(map[string]any)
					match, _ := cond["match"].(map[string]any)
					val, _ := match["value"].(string)
					for id, p := range fv.points {
						if p.Payload["file_path"] == val {
							delete(fv.points, id)
						}
					}
				}
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
}

func filepathHasSuffix(path, suffix string) bool {
	if len(path) < len(suffix) {
		return false
	}
	return path[len(path)-len(suffix):] == suffix
}

func newTestIndexer(t *testing.T, metadata store.MetadataStore, srv *httptest.Server) *Indexer {
	t.Helper()
	ignEngine := ignore.New(nil)
	sc := scanner.New(ignEngine, 0)
	vc := vectorstore.NewClient(srv.URL, "")
	embedder := embed.NewMock(16)
	return New(sc, metadata, vc, embedder, Options{
		ChunkSize:      1024,
		Overlap:        0,
		Concurrency:    2,
		BatchSize:      32,
		CollectionName: "test",
		TextExtensions: pathutil.TextExtensions(nil),
	})
}

func newMemStore(t *testing.T) store.MetadataStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIndexFreshTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("hello rust"), 0o644))

	srv := newFakeVectorServer()
	defer srv.Close()
	metadata := newMemStore(t)
	ix := newTestIndexer(t, metadata, srv)

	res, err := ix.Index(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Indexed)
	assert.Equal(t, 0, res.Skipped)
}

func TestIndexIdempotentNoOp(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("hello world"), 0o644))

	srv := newFakeVectorServer()
	defer srv.Close()
	metadata := newMemStore(t)
	ix := newTestIndexer(t, metadata, srv)

	_, err := ix.Index(context.Background(), []string{dir})
	require.NoError(t, err)

	res, err := ix.Index(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Indexed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Deleted)
}

func TestIndexDeletionReconciliation(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.md")
	bPath := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(aPath, []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(bPath, []byte("hello rust"), 0o644))

	srv := newFakeVectorServer()
	defer srv.Close()
	metadata := newMemStore(t)
	ix := newTestIndexer(t, metadata, srv)

	_, err := ix.Index(context.Background(), []string{dir})
	require.NoError(t, err)

	require.NoError(t, os.Remove(bPath))
	res, err := ix.Index(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 0, res.Indexed)
	assert.Equal(t, 1, res.Skipped)
}

func TestIndexNonexistentRootReported(t *testing.T) {
	srv := newFakeVectorServer()
	defer srv.Close()
	metadata := newMemStore(t)
	ix := newTestIndexer(t, metadata, srv)

	_, err := ix.Index(context.Background(), []string{"/no/such/path"})
	require.Error(t, err)
}
