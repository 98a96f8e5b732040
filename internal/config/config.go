// Package config resolves the engine's process-wide configuration
// once at startup into an immutable value, per spec.md §6. There are
// no globals and environment variables are not re-read mid-process.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/directory-indexer/directory-indexer/internal/errs"
)

// Config is the resolved, immutable configuration threaded through
// every component constructor.
type Config struct {
	DataDir        string
	VectorEndpoint string
	VectorAPIKey   string
	CollectionName string

	EmbeddingProvider string
	EmbeddingEndpoint string
	EmbeddingModel    string
	OpenAIAPIKey      string
	EmbeddingDim      int

	ChunkSize         int
	Overlap           int
	MaxFileSize       int64
	EssentialPatterns []string
	Concurrency       int
	Verbose           bool
}

// Load resolves Config from the given environment (typically
// os.Environ()), applying the defaults from spec.md §6.
func Load(environ []string) (Config, error) {
	env := toMap(environ)

	cfg := Config{
		VectorEndpoint:    firstNonEmpty(env["VECTOR_ENDPOINT"], env["QDRANT_ENDPOINT"], "http://localhost:6333"),
		VectorAPIKey:      env["VECTOR_API_KEY"],
		EmbeddingProvider: firstNonEmpty(env["EMBEDDING_PROVIDER"], "ollama"),
		EmbeddingEndpoint: firstNonEmpty(env["EMBEDDING_ENDPOINT"], env["OLLAMA_ENDPOINT"], "http://localhost:11434"),
		EmbeddingModel:    firstNonEmpty(env["EMBEDDING_MODEL"], "nomic-embed-text"),
		OpenAIAPIKey:      env["OPENAI_API_KEY"],
		CollectionName:    firstNonEmpty(env["COLLECTION_NAME"], "directory-indexer"),
		ChunkSize:         1024,
		Overlap:           128,
		MaxFileSize:       10 * 1024 * 1024,
		EssentialPatterns: nil,
		Concurrency:       4,
		EmbeddingDim:      768,
	}

	dataDir := env["DATA_DIR"]
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, errs.Wrap(errs.KindConfig, "cannot resolve home directory for default DATA_DIR", err)
		}
		dataDir = filepath.Join(home, ".directory-indexer")
	}
	cfg.DataDir = dataDir

	if cfg.EmbeddingProvider == "openai" && cfg.OpenAIAPIKey == "" {
		return Config{}, errs.Config("missing OPENAI_API_KEY").WithHint("set OPENAI_API_KEY when EMBEDDING_PROVIDER=openai")
	}

	return cfg, nil
}

// LoadEnv resolves Config from the real process environment.
func LoadEnv() (Config, error) {
	return Load(os.Environ())
}

// DBPath returns the path to the metadata store file.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "data.db")
}

func toMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				m[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return m
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ParseEnvInt parses an integer env var, falling back to def on error
// or absence.
func ParseEnvInt(env map[string]string, key string, def int) int {
	v, ok := env[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
