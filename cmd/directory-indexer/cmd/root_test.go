package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// withTestEnv points buildDispatcher at a temp data dir, a mock
// embedder, and a fake vector store that keeps upserted points and
// returns them all from search, and restores the shared CLI flag
// state afterward.
func withTestEnv(t *testing.T) {
	t.Helper()
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

	t.Setenv("VECTOR_ENDPOINT", srv.URL)
	t.Setenv("EMBEDDING_PROVIDER", "mock")
	t.Setenv("DATA_DIR", t.TempDir())

	prevDataDir, prevVerbose := flagDataDir, flagVerbose
	flagDataDir, flagVerbose = "", false
	t.Cleanup(func() { flagDataDir, flagVerbose = prevDataDir, prevVerbose })
}
