package embed

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

// Ollama calls a local or remote Ollama server's embeddings endpoint.
// Grounded on the engine's general HTTP-client idiom: a pooled
// *http.Client, a context-scoped timeout per request, and a small
// exponential backoff retry around transient failures.
type Ollama struct {
	endpoint string
	model    string
	dim      int
	client   *http.Client
}

// NewOllama builds an Ollama embedder. dim is the declared dimension;
// it is validated against the first real response.
func NewOllama(endpoint, model string, dim int) *Ollama {
	return &Ollama{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		dim:      dim,
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        16,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (o *Ollama) Dimensions() int { return o.dim }

func (o *Ollama) Provider() string { return ProviderOllama }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := o.doEmbedWithRetry(ctx, text, 3)
	if err != nil {
		return nil, err
	}
	if o.dim == 0 {
		o.dim = len(vec)
	} else if len(vec) != o.dim {
		return nil, errs.New(errs.KindEmbedding, fmt.Sprintf(
			"ollama returned %d-dim embedding, expected %d", len(vec), o.dim)).WithIdentifier(o.endpoint)
	}
	return vec, nil
}

// EmbedBatch issues sequential single calls, per spec §4.5 (ollama has
// no native batch endpoint in the contract this client targets).
func (o *Ollama) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := o.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (o *Ollama) doEmbedWithRetry(ctx context.Context, text string, maxRetries int) ([]float32, error) {
	var lastErr error
	backoff := 250 * time.Millisecond
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errs.Wrap(errs.KindEmbedding, "embedding request canceled", ctx.Err()).WithIdentifier(o.endpoint)
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		vec, err := o.doEmbed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (o *Ollama) doEmbed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, errs.Wrap(errs.KindEmbedding, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.KindEmbedding, "failed to build request", err).WithIdentifier(o.endpoint)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindEmbedding, "ollama request failed", err).
			WithIdentifier(o.endpoint).
			WithHint("is ollama running at " + o.endpoint + "?")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, errs.New(errs.KindEmbedding, fmt.Sprintf("ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))).
			WithIdentifier(o.endpoint)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errs.Wrap(errs.KindEmbedding, "failed to decode ollama response", err).WithIdentifier(o.endpoint)
	}
	if len(parsed.Embedding) == 0 {
		return nil, errs.New(errs.KindEmbedding, "ollama response missing embedding").WithIdentifier(o.endpoint)
	}
	return parsed.Embedding, nil
}
