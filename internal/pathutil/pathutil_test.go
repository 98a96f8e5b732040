package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdempotent(t *testing.T) {
	p1, err := Normalize("./a/../a/b.txt")
	require.NoError(t, err)
	p2, err := Normalize(p1)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestHashBytesDeterministic(t *testing.T) {
	a := HashBytes([]byte("hello world"))
	b := HashBytes([]byte("hello world"))
	c := HashBytes([]byte("hello rust"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestIsText(t *testing.T) {
	allowed := TextExtensions(nil)
	assert.True(t, IsText("a.md", []byte("hello"), allowed))
	assert.False(t, IsText("a.bin", []byte("hello"), allowed))
	assert.False(t, IsText("a.md", []byte("he\x00llo"), allowed))
}

func TestIsTextExtraExtension(t *testing.T) {
	allowed := TextExtensions([]string{"xyz"})
	assert.True(t, IsText("a.xyz", []byte("hi"), allowed))
}

func TestChunkTextEmpty(t *testing.T) {
	chunks := ChunkText("", 1024, 0)
	assert.Empty(t, chunks)
}

func TestChunkTextBasic(t *testing.T) {
	chunks := ChunkText("hello world", 5, 0)
	require.Len(t, chunks, 3)
	assert.Equal(t, "hello", chunks[0].Content)
	assert.Equal(t, " worl", chunks[1].Content)
	assert.Equal(t, "d", chunks[2].Content)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 2, chunks[2].Index)
}

func TestChunkTextOverlap(t *testing.T) {
	chunks := ChunkText("abcdefghij", 4, 2)
	require.True(t, len(chunks) > 1)
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].EndByte-chunks[i].StartByte, 4)
	}
}

func TestChunkTextNeverSplitsRune(t *testing.T) {
	text := "a" + "ééé" + "b" // multi-byte runes in the middle
	chunks := ChunkText(text, 2, 0)
	for _, c := range chunks {
		assert.True(t, len(c.Content) > 0)
		r := []rune(c.Content)
		assert.NotEmpty(t, r)
	}
}

func TestChunkTextRoundTrip(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog repeatedly for many bytes of content."
	chunks := ChunkText(text, 10, 3)
	reconstructed := chunks[0].Content
	for i := 1; i < len(chunks); i++ {
		overlap := chunks[i-1].EndByte - chunks[i].StartByte
		if overlap < 0 {
			overlap = 0
		}
		if overlap > len(chunks[i].Content) {
			overlap = len(chunks[i].Content)
		}
		reconstructed += chunks[i].Content[overlap:]
	}
	assert.Equal(t, text, reconstructed)
}

func TestDerivePointIDDeterministic(t *testing.T) {
	id1 := DerivePointID("abc123", 0)
	id2 := DerivePointID("abc123", 0)
	id3 := DerivePointID("abc123", 1)
	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}
