package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:6333", cfg.VectorEndpoint)
	assert.Equal(t, "ollama", cfg.EmbeddingProvider)
	assert.Equal(t, "http://localhost:11434", cfg.EmbeddingEndpoint)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, "directory-indexer", cfg.CollectionName)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load([]string{
		"VECTOR_ENDPOINT=http://vec:6333",
		"EMBEDDING_PROVIDER=openai",
		"OPENAI_API_KEY=sk-test",
		"DATA_DIR=/tmp/di-data",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://vec:6333", cfg.VectorEndpoint)
	assert.Equal(t, "openai", cfg.EmbeddingProvider)
	assert.Equal(t, "/tmp/di-data/data.db", cfg.DBPath())
}

func TestLoadQdrantEndpointAlias(t *testing.T) {
	cfg, err := Load([]string{"QDRANT_ENDPOINT=http://alias:6333"})
	require.NoError(t, err)
	assert.Equal(t, "http://alias:6333", cfg.VectorEndpoint)
}

func TestLoadOpenAIWithoutKeyFails(t *testing.T) {
	_, err := Load([]string{"EMBEDDING_PROVIDER=openai"})
	require.Error(t, err)
}
