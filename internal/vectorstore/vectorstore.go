// Package vectorstore implements the REST client (C4) against a
// Qdrant-compatible vector database: collection lifecycle plus point
// upsert/search/delete, exactly the subset of the wire surface the
// engine needs.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/directory-indexer/directory-indexer/internal/errs"
)

// Point is a payload-carrying embedding record.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// SearchHit is one ranked result from Search.
type SearchHit struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// Client is a thin, typed REST client — no gRPC SDK, matching the
// spec's documented REST contract and the engine's existing pattern
// of hand-rolled net/http clients for every external HTTP dependency.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a Client against baseURL. apiKey may be empty.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        16,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any, timeout time.Duration) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errs.Wrap(errs.KindVector, "failed to encode request body", err)
		}
		reader = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errs.Wrap(errs.KindVector, "failed to build request", err).WithIdentifier(c.baseURL + path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Wrap(errs.KindVector, "vector store request failed", err).
			WithIdentifier(c.baseURL).
			WithHint("is the vector store running at " + c.baseURL + "?")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return errs.New(errs.KindVector, fmt.Sprintf("vector store returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))).
			WithIdentifier(c.baseURL + path)
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errs.Wrap(errs.KindVector, "failed to decode vector store response", err).WithIdentifier(c.baseURL + path)
		}
	}
	return nil
}

// Healthz probes GET /healthz with a short timeout.
func (c *Client) Healthz(ctx context.Context) bool {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, 5*time.Second) == nil
}

// EnsureCollection creates the collection if absent. If it already
// exists with a mismatching vector size, it fails with a clear
// dimension-mismatch error.
func (c *Client) EnsureCollection(ctx context.Context, collection string, dim int) error {
	var existing struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	err := c.do(ctx, http.MethodGet, "/collections/"+collection, nil, &existing, 10*time.Second)
	if err == nil && existing.Result.Config.Params.Vectors.Size != 0 {
		if existing.Result.Config.Params.Vectors.Size != dim {
			return errs.New(errs.KindVector, fmt.Sprintf(
				"dimension mismatch: collection has size %d, embedder produces %d",
				existing.Result.Config.Params.Vectors.Size, dim)).WithIdentifier(collection)
		}
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{"size": dim, "distance": "Cosine"},
	}
	if err := c.do(ctx, http.MethodPut, "/collections/"+collection, body, nil, 10*time.Second); err != nil {
		return errs.Wrap(errs.KindVector, "failed to create collection", err).WithIdentifier(collection)
	}
	return nil
}

// Upsert writes points[] to collection with at-least-once semantics
// (guaranteed idempotent by the caller's deterministic ids).
func (c *Client) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]any{"points": points}
	if err := c.do(ctx, http.MethodPut, "/collections/"+collection+"/points", body, nil, 10*time.Second); err != nil {
		return errs.Wrap(errs.KindVector, "failed to upsert points", err).WithIdentifier(collection)
	}
	return nil
}

// Search runs a nearest-neighbour query, returning up to limit hits
// ordered descending by score. filter is passed through verbatim when
// non-nil (Qdrant-style {must: [...]}).
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int, filter map[string]any) ([]SearchHit, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if filter != nil {
		body["filter"] = filter
	}
	var result struct {
		Result []SearchHit `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body, &result, 10*time.Second); err != nil {
		return nil, errs.Wrap(errs.KindVector, "vector search failed", err).WithIdentifier(collection)
	}
	return result.Result, nil
}

// DeleteByFilePath removes every point whose payload.file_path equals
// path, via the filter-based delete endpoint.
func (c *Client) DeleteByFilePath(ctx context.Context, collection, path string) error {
	filter := map[string]any{
		"must": []map[string]any{
			{"key": "file_path", "match": map[string]any{"value": path}},
		},
	}
	body := map[string]any{"filter": filter}
	if err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/delete", body, nil, 10*time.Second); err != nil {
		return errs.Wrap(errs.KindVector, "failed to delete points by file_path", err).WithIdentifier(path)
	}
	return nil
}

// DeleteIDs removes the given point ids.
func (c *Client) DeleteIDs(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	body := map[string]any{"points": ids}
	if err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/delete", body, nil, 10*time.Second); err != nil {
		return errs.Wrap(errs.KindVector, "failed to delete points by id", err).WithIdentifier(collection)
	}
	return nil
}

// DeleteCollection drops the entire collection. Used only by reset.
func (c *Client) DeleteCollection(ctx context.Context, collection string) error {
	if err := c.do(ctx, http.MethodDelete, "/collections/"+collection, nil, nil, 10*time.Second); err != nil {
		return errs.Wrap(errs.KindVector, "failed to delete collection", err).WithIdentifier(collection)
	}
	return nil
}
