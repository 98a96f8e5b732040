package present

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterPlainOutputForNonTTY(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)
	w.Success("indexed 3 files")
	assert.Contains(t, buf.String(), "indexed 3 files")
}

func TestIsTTYFalseForBuffer(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.False(t, IsTTY(buf))
}

func TestDetectNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
	assert.NoError(t, os.Unsetenv("NO_COLOR"))
	assert.False(t, DetectNoColor())
}
