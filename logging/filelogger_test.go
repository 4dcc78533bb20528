package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileLogger_RequiresBaseDir(t *testing.T) {
	_, err := NewFileLogger("", "run-1", nil)
	assert.ErrorContains(t, err, "log base directory is required")
}

func TestNewFileLogger_CreatesRunDir(t *testing.T) {
	base := t.TempDir()
	l, err := NewFileLogger(base, "run-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "run-1", l.GetRunID())
	assert.Equal(t, filepath.Join(base, "run-1"), l.RunDir())
	info, err := os.Stat(l.RunDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewFileLogger_GeneratesRunID(t *testing.T) {
	base := t.TempDir()
	a, err := NewFileLogger(base, "", nil)
	require.NoError(t, err)
	b, err := NewFileLogger(base, "", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, a.GetRunID())
	assert.NotEqual(t, a.GetRunID(), b.GetRunID())
}

func TestFileLogger_LogWorkerOutput(t *testing.T) {
	l, err := NewFileLogger(t.TempDir(), "run-1", nil)
	require.NoError(t, err)

	require.NoError(t, l.LogWorkerOutput("spec/core_spec.lua", "\x1b[32mall green\x1b[0m\n", false))

	data, err := os.ReadFile(filepath.Join(l.RunDir(), "spec_core_spec.lua.out.log"))
	require.NoError(t, err)
	assert.Equal(t, "all green\n", string(data))
}

func TestFileLogger_LogWorkerOutputTruncated(t *testing.T) {
	l, err := NewFileLogger(t.TempDir(), "run-1", nil)
	require.NoError(t, err)

	require.NoError(t, l.LogWorkerOutput("spec/noisy_spec.lua", "tail of output\n", true))

	data, err := os.ReadFile(filepath.Join(l.RunDir(), "spec_noisy_spec.lua.out.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "output truncated")
	assert.Contains(t, string(data), "tail of output")
}

func TestFileLogger_LogSummary(t *testing.T) {
	l, err := NewFileLogger(t.TempDir(), "run-1", nil)
	require.NoError(t, err)

	require.NoError(t, l.LogSummary("Tests: 3 total, 3 passed\n"))

	data, err := os.ReadFile(filepath.Join(l.RunDir(), "summary.log"))
	require.NoError(t, err)
	assert.Equal(t, "Tests: 3 total, 3 passed\n", string(data))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"spec/core_spec.lua", "spec_core_spec.lua"},
		{"a\\b:c d", "a_b_c_d"},
		{"../../etc/passwd", "etc_passwd"},
		{"", "worker"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestStripANSIEscapeSequences(t *testing.T) {
	assert.Equal(t, "plain", stripANSIEscapeSequences("plain"))
	assert.Equal(t, "bold red", stripANSIEscapeSequences("\x1b[1;31mbold red\x1b[0m"))
}
