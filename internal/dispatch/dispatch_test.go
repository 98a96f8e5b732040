package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/directory-indexer/directory-indexer/internal/config"
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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

	return &Dispatcher{
		Config:     config.Config{CollectionName: "col", EmbeddingProvider: "mock"},
		Indexer:    ix,
		Search:     se,
		Status:     st,
		Metadata:   metadata,
		Vectors:    vc,
		Embedder:   embedder,
		Workspaces: ws,
	}
}

func TestDispatchIndexRequiresRoots(t *testing.T) {
	d := newDispatcher(t)
	_, err := d.Index(context.Background(), IndexArgs{})
	require.Error(t, err)
}

func TestDispatchSearchRequiresQuery(t *testing.T) {
	d := newDispatcher(t)
	_, err := d.SearchQuery(context.Background(), SearchArgs{})
	require.Error(t, err)
}

func TestDispatchResetRequiresForce(t *testing.T) {
	d := newDispatcher(t)
	_, err := d.Reset(context.Background(), ResetArgs{})
	require.Error(t, err)
}

func TestDispatchResetWithForce(t *testing.T) {
	d := newDispatcher(t)
	res, err := d.Reset(context.Background(), ResetArgs{Force: true})
	require.NoError(t, err)
	assert.True(t, res.MetadataCleared)
}

func TestDispatchServerInfo(t *testing.T) {
	d := newDispatcher(t)
	info, err := d.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mock", info.EmbeddingProvider)
	assert.Equal(t, 8, info.Dimensions)
}

func TestDispatchIndexAndStatusEndToEnd(t *testing.T) {
	d := newDispatcher(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("hello world"), 0o644))

	_, err := d.Index(context.Background(), IndexArgs{Roots: []string{dir}})
	require.NoError(t, err)

	st, err := d.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Index.Files)
}
