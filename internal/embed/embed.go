// Package embed implements the embedding client (C5): a uniform
// interface over three provider variants (Mock, Ollama, OpenAI), the
// only component in the engine whose latency and availability are
// properties of a remote service.
package embed

import "context"

// Embedder is the capability set every provider implements.
type Embedder interface {
	// Dimensions returns D, declared at construction and validated
	// against the first real embedding returned.
	Dimensions() int
	// Embed returns the embedding of a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns embeddings in input order. Mock and OpenAI
	// may issue one request; Ollama issues sequential single calls.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Provider names the variant, for diagnostics and status probes.
	Provider() string
}

const (
	ProviderMock   = "mock"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

const DefaultBatchSize = 32
