package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/limits"
	"github.com/Aman-CERP/snapfind/internal/search"
)

func TestIndexCmd_WritesIndex(t *testing.T) {
	// Given: a project directory
	isolate(t)
	dir := newProjectDir(t)

	// When: indexing it with plain output
	out, err := run(t, "index", "--plain", dir)

	// Then: the index holds the text files and skips the binary one
	require.NoError(t, err)
	assert.Contains(t, out, "Complete: 6 files indexed, 1 skipped")
	assert.Contains(t, out, "Index saved to")

	engine, err := search.Load(filepath.Join(dir, search.DefaultIndexFile), limits.Default())
	require.NoError(t, err)
	assert.Equal(t, 6, engine.Len())
}

func TestIndexCmd_FreeProfile(t *testing.T) {
	// Given: a file larger than the free tier's 1 KiB file size
	isolate(t)
	dir := t.TempDir()
	big := make([]byte, 2048)
	for i := range big {
		big[i] = 'a'
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.txt"), big, 0o644))

	// When: indexing with the free profile
	_, err := run(t, "index", "--plain", "--profile", "free", dir)

	// Then: the crawl aborts on the size limit
	assertCode(t, err, snaperrors.ErrCodeFileSizeExceeded)
}

func TestIndexCmd_UsesProjectConfig(t *testing.T) {
	// Given: a project config choosing another index file name
	isolate(t)
	dir := newProjectDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".snapfind.yaml"),
		[]byte("index:\n  file_name: custom.idx\n"), 0o644))

	// When: indexing
	_, err := run(t, "index", "--plain", dir)

	// Then: the index is written under the configured name
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "custom.idx"))
	assert.NoFileExists(t, filepath.Join(dir, search.DefaultIndexFile))
}

func TestIndexCmd_Errors(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing directory", []string{"index", filepath.Join(t.TempDir(), "nope")}, snaperrors.ErrCodeNotFound},
		{"not a directory", []string{"index", file}, snaperrors.ErrCodeNotADirectory},
		{"unknown profile", []string{"index", "--profile", "huge", t.TempDir()}, snaperrors.ErrCodeConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assertCode(t, err, tt.code)
		})
	}
}
