package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEssentialPatternsCannotBeNegated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("!node_modules\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))

	eng := New(nil)
	path := filepath.Join(dir, "node_modules", "x.js")
	assert.True(t, eng.Ignored(dir, dir, path, false))
}

func TestGitignoreNegation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\n!important.log\n"), 0o644))

	eng := New(nil)
	assert.True(t, eng.Ignored(dir, dir, filepath.Join(dir, "debug.log"), false))
	assert.False(t, eng.Ignored(dir, dir, filepath.Join(dir, "important.log"), false))
}

func TestNoGitignoreMeansNotIgnored(t *testing.T) {
	dir := t.TempDir()
	eng := New(nil)
	assert.False(t, eng.Ignored(dir, dir, filepath.Join(dir, "a.txt"), false))
}

func TestCacheReusedAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\n"), 0o644))
	eng := New(nil)
	path := filepath.Join(dir, "a.log")
	assert.True(t, eng.Ignored(dir, dir, path, false))
	assert.True(t, eng.Ignored(dir, dir, path, false))
	assert.Equal(t, 1, eng.cache.Len())
}
