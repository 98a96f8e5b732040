package embed

import (
	"context"
	"encoding/binary"
	"hash/fnv"
)

// Mock is a deterministic embedder for tests: the embedding of s is a
// vector of configured dimension computed from a cheap hash of s, so
// identical inputs always produce identical outputs and different
// inputs produce different outputs with overwhelming probability.
type Mock struct {
	dim int
}

// NewMock builds a Mock embedder of the given dimension.
func NewMock(dim int) *Mock {
	if dim <= 0 {
		dim = 16
	}
	return &Mock{dim: dim}
}

func (m *Mock) Dimensions() int { return m.dim }

func (m *Mock) Provider() string { return ProviderMock }

func (m *Mock) Embed(_ context.Context, text string) ([]float32, error) {
	return hashVector(text, m.dim), nil
}

func (m *Mock) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashVector(t, m.dim)
	}
	return out, nil
}

// hashVector derives a fixed-dimension float32 vector from s using a
// seeded FNV-1a hash per dimension, so the result is a pure function
// of (s, dim).
func hashVector(s string, dim int) []float32 {
	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		h := fnv.New64a()
		var seed [8]byte
		binary.LittleEndian.PutUint64(seed[:], uint64(i))
		_, _ = h.Write(seed[:])
		_, _ = h.Write([]byte(s))
		sum := h.Sum64()
		// map to [-1, 1]
		vec[i] = float32(int64(sum%2000001)-1000000) / 1000000.0
	}
	return vec
}
