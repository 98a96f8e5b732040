// Package pathutil implements path normalization, content hashing,
// text-file detection, and chunk windowing — the leaf utilities every
// other component in the engine builds on.
package pathutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Normalize resolves path to an absolute, forward-slash form with
// "." and ".." collapsed. Case is preserved. Normalize is idempotent:
// Normalize(Normalize(p)) == Normalize(p).
func Normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)
	return filepath.ToSlash(abs), nil
}

// HashBytes returns the lower-hex SHA-256 digest of b, used both for
// file-content identity and for deriving stable point ids.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// defaultTextExtensions is the seed set of extensions treated as text.
var defaultTextExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".markdown": {}, ".rst": {},
	".go": {}, ".py": {}, ".js": {}, ".ts": {}, ".tsx": {}, ".jsx": {},
	".java": {}, ".c": {}, ".h": {}, ".cpp": {}, ".hpp": {}, ".cc": {},
	".rs": {}, ".rb": {}, ".php": {}, ".cs": {}, ".swift": {}, ".kt": {},
	".sh": {}, ".bash": {}, ".zsh": {}, ".fish": {},
	".json": {}, ".yaml": {}, ".yml": {}, ".toml": {}, ".ini": {}, ".cfg": {},
	".xml": {}, ".html": {}, ".htm": {}, ".css": {}, ".scss": {}, ".less": {},
	".sql": {}, ".proto": {}, ".graphql": {},
	".env": {}, ".conf": {}, ".properties": {},
	".csv": {}, ".tsv": {},
	".dockerfile": {}, ".makefile": {},
	".gitignore": {}, ".editorconfig": {},
}

// TextExtensions returns the extension set IsText consults, seeded with
// the default set plus any additional extensions supplied by configuration.
func TextExtensions(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(defaultTextExtensions)+len(extra))
	for ext := range defaultTextExtensions {
		set[ext] = struct{}{}
	}
	for _, ext := range extra {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}

// IsText reports whether path should be treated as text given its
// extension (checked against allowed) and a content sample: it is
// accepted only when the extension is allowed AND the sample's first
// 8 KiB contains no NUL byte.
func IsText(path string, sample []byte, allowed map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(path))
	base := strings.ToLower(filepath.Base(path))
	if _, ok := allowed[ext]; !ok {
		if _, ok := allowed["."+base]; !ok {
			return false
		}
	}
	probe := sample
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	return !bytes.ContainsRune(probe, 0)
}

// Chunk is one contiguous, byte-addressed window of a file's text.
type Chunk struct {
	Index     int
	StartByte int
	EndByte   int
	Content   string
}

// ChunkText splits text into a dense sequence of chunks, advancing by
// chunkSize-overlap bytes per step. The final chunk may be shorter.
// A chunk boundary is never placed inside a UTF-8 code point; when the
// computed end would split one, the boundary shifts left to the
// nearest code-point start. Empty text yields zero chunks.
func ChunkText(text string, chunkSize, overlap int) []Chunk {
	if len(text) == 0 || chunkSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []Chunk
	n := len(text)
	start := 0
	index := 0
	for start < n {
		end := start + chunkSize
		if end > n {
			end = n
		} else {
			end = backToRuneBoundary(text, end)
			if end <= start {
				end = start + 1
			}
		}
		chunks = append(chunks, Chunk{
			Index:     index,
			StartByte: start,
			EndByte:   end,
			Content:   text[start:end],
		})
		index++
		if end >= n {
			break
		}
		next := start + step
		if next > end {
			next = end
		}
		next = backToRuneBoundary(text, next)
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// backToRuneBoundary moves pos left until it no longer sits inside a
// multi-byte UTF-8 code point.
func backToRuneBoundary(s string, pos int) int {
	if pos >= len(s) {
		return len(s)
	}
	for pos > 0 && !utf8.RuneStart(s[pos]) {
		pos--
	}
	return pos
}
