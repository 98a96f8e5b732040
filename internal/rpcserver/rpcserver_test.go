package rpcserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/directory-indexer/directory-indexer/internal/config"
	"github.com/directory-indexer/directory-indexer/internal/dispatch"
	"github.com/directory-indexer/directory-indexer/internal/embed"
	"github.com/directory-indexer/directory-indexer/internal/ignore"
	"github.com/directory-indexer/directory-indexer/internal/indexer"
	"github.com/directory-indexer/directory-indexer/internal/pathutil"
	"github.com/directory-indexer/directory-indexer/internal/scanner"
	"github.com/directory-indexer/directory-indexer/internal/search"
	"github.com/directory-indexer/directory-indexer/internal/status"
	"github.com/directory-indexer/directory-indexer/internal/store"
	"github.com/directory-indexer/directory-indexer/internal/vectorstore"
	"github.com/directory-indexer/directory-indexer/internal/workspace"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	// Fake vector store: keeps upserted points and returns them all
	// from search.
	var mu sync.Mutex
	var points []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/points"):
			var body struct {
				Points []map[string]any `json:"points"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			points = append(points, body.Points...)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/points/search"):
			hits := make([]map[string]any, 0, len(points))
			for _, p := range points {
				hits = append(hits, map[string]any{"id": p["id"], "score": 0.5, "payload": p["payload"]})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"result": hits})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	metadata, err := store.Open(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = metadata.Close() })

	vc := vectorstore.NewClient(srv.URL, "")
	embedder := embed.NewMock(8)
	ws := workspace.Discover(nil)
	sc := scanner.New(ignore.New(nil), 0)
	ix := indexer.New(sc, metadata, vc, embedder, indexer.Options{
		ChunkSize: 1024, Concurrency: 2, BatchSize: 32,
		CollectionName: "col", TextExtensions: pathutil.TextExtensions(nil),
	})
	se := search.New(embedder, vc, metadata, ws, "col")
	st := status.New(vc, embedder, metadata, ws, "col")

	d := &dispatch.Dispatcher{
		Config:     config.Config{CollectionName: "col", EmbeddingProvider: "mock", EmbeddingModel: "mock-v1"},
		Indexer:    ix,
		Search:     se,
		Status:     st,
		Metadata:   metadata,
		Vectors:    vc,
		Embedder:   embedder,
		Workspaces: ws,
	}
	return New(d, "test")
}

func TestHandleIndexRequiresPaths(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleIndex(context.Background(), nil, IndexInput{})
	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, errCodeInvalidParams, mcpErr.Code)
}

func TestHandleIndexAndSearch(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("hello world"), 0o644))

	_, out, err := s.handleIndex(context.Background(), nil, IndexInput{Paths: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Indexed)

	_, searchOut, err := s.handleSearch(context.Background(), nil, SearchInput{Query: "hello"})
	require.NoError(t, err)
	require.Len(t, searchOut.Results, 1)
	assert.Equal(t, filepath.Join(dir, "a.md"), searchOut.Results[0].FilePath)
}

func TestHandleSearchRequiresQuery(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleSearch(context.Background(), nil, SearchInput{})
	require.Error(t, err)
}

func TestHandleGetContentNotFound(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleGetContent(context.Background(), nil, GetContentInput{FilePath: filepath.Join(t.TempDir(), "nope.md")})
	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, errCodeInternalError, mcpErr.Code)
}

func TestHandleServerInfo(t *testing.T) {
	s := newTestServer(t)
	_, out, err := s.handleServerInfo(context.Background(), nil, ServerInfoInput{})
	require.NoError(t, err)
	assert.Equal(t, "mock", out.EmbeddingProvider)
	assert.Equal(t, "mock-v1", out.EmbeddingModel)
	assert.Equal(t, 8, out.Dimensions)
}
