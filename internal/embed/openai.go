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

// OpenAI calls an OpenAI-compatible embeddings endpoint. Grounded on
// the bearer-auth/JSON-body/data[].embedding shape used by OpenAI-style
// callers throughout the retrieval pack.
type OpenAI struct {
	endpoint string
	model    string
	apiKey   string
	dim      int
	client   *http.Client
}

// NewOpenAI builds an OpenAI embedder.
func NewOpenAI(endpoint, model, apiKey string, dim int) *OpenAI {
	return &OpenAI{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		apiKey:   apiKey,
		dim:      dim,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (o *OpenAI) Dimensions() int { return o.dim }

func (o *OpenAI) Provider() string { return ProviderOpenAI }

type openAIRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch issues a single request for all texts, per spec §4.5.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if o.apiKey == "" {
		return nil, errs.New(errs.KindEmbedding, "missing OPENAI_API_KEY").WithIdentifier(o.endpoint).
			WithHint("set OPENAI_API_KEY when EMBEDDING_PROVIDER=openai")
	}

	body, err := json.Marshal(openAIRequest{Model: o.model, Input: texts})
	if err != nil {
		return nil, errs.Wrap(errs.KindEmbedding, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.KindEmbedding, "failed to build request", err).WithIdentifier(o.endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindEmbedding, "openai request failed", err).
			WithIdentifier(o.endpoint).
			WithHint("is the endpoint reachable at " + o.endpoint + "?")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, errs.New(errs.KindEmbedding, fmt.Sprintf("openai returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))).
			WithIdentifier(o.endpoint)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errs.Wrap(errs.KindEmbedding, "failed to decode openai response", err).WithIdentifier(o.endpoint)
	}
	if len(parsed.Data) != len(texts) {
		return nil, errs.New(errs.KindEmbedding, fmt.Sprintf(
			"openai returned %d embeddings for %d inputs", len(parsed.Data), len(texts))).WithIdentifier(o.endpoint)
	}

	out := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		if o.dim != 0 && len(d.Embedding) != o.dim {
			return nil, errs.New(errs.KindEmbedding, fmt.Sprintf(
				"openai returned %d-dim embedding, expected %d", len(d.Embedding), o.dim)).WithIdentifier(o.endpoint)
		}
		out[i] = d.Embedding
	}
	if o.dim == 0 && len(out) > 0 {
		o.dim = len(out[0])
	}
	return out, nil
}
