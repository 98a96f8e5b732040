package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarCmdRequiresIndexedFile(t *testing.T) {
	withTestEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(file, []byte("hello world"), 0o644))

	cmd := newSimilarCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{file})

	// Not indexed yet: Similar finds no metadata row for the file and
	// returns a NotFound error.
	err := cmd.Execute()
	assert.Error(t, err)
}

func TestSimilarCmdAfterIndexing(t *testing.T) {
	withTestEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(file, []byte("hello world"), 0o644))
	other := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(other, []byte("hello world again"), 0o644))

	indexCmd := newIndexCmd()
	indexCmd.SetOut(&bytes.Buffer{})
	indexCmd.SetArgs([]string{dir})
	require.NoError(t, indexCmd.Execute())

	cmd := newSimilarCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{file})
	require.NoError(t, cmd.Execute())
}
