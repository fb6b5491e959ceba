package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/search"
)

func indexedProject(t *testing.T) string {
	t.Helper()
	dir := newProjectDir(t)
	_, err := run(t, "index", "--plain", dir)
	require.NoError(t, err)
	return dir
}

func TestSearchCmd_Text(t *testing.T) {
	// Given: an indexed project
	isolate(t)
	dir := indexedProject(t)

	// When: searching for a term in paths and contents
	out, err := run(t, "search", "config", dir)

	// Then: the path match ranks first
	require.NoError(t, err)
	assert.Contains(t, out, "src/config.go")
	assert.Contains(t, out, "docs/guide.md")
	assert.Less(t, strings.Index(out, "src/config.go"), strings.Index(out, "docs/guide.md"))
	assert.Contains(t, out, "result(s)")
}

func TestSearchCmd_JSON(t *testing.T) {
	isolate(t)
	dir := indexedProject(t)

	out, err := run(t, "search", "*.md", dir, "--format", "json")

	require.NoError(t, err)
	var results []search.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, float32(100), r.Score)
		assert.Equal(t, ".md", filepath.Ext(r.Path))
	}
}

func TestSearchCmd_Limit(t *testing.T) {
	isolate(t)
	dir := indexedProject(t)

	out, err := run(t, "search", "*", dir, "--format", "json", "--limit", "2")

	require.NoError(t, err)
	var results []search.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Len(t, results, 2)
}

func TestSearchCmd_NoResults(t *testing.T) {
	isolate(t)
	dir := indexedProject(t)

	out, err := run(t, "search", "zebra", dir)

	require.NoError(t, err)
	assert.Contains(t, out, `No results for "zebra"`)
}

func TestSearchCmd_WithoutIndexCrawlsInMemory(t *testing.T) {
	// Given: a project that was never indexed
	isolate(t)
	dir := newProjectDir(t)

	// When: searching
	out, err := run(t, "search", "milk", dir)

	// Then: results come from a fresh crawl and nothing is written
	require.NoError(t, err)
	assert.Contains(t, out, "notes/todo.txt")
	assert.Contains(t, out, "snapfind index")
	_, statErr := os.Stat(filepath.Join(dir, search.DefaultIndexFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSearchCmd_Errors(t *testing.T) {
	isolate(t)
	dir := indexedProject(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"blank query", []string{"search", "   ", dir}, snaperrors.ErrCodeQueryEmpty},
		{"unknown format", []string{"search", "x", dir, "--format", "xml"}, snaperrors.ErrCodeInvalidInput},
		{"missing directory", []string{"search", "x", filepath.Join(dir, "nope")}, snaperrors.ErrCodeNotFound},
		{"non-ascii query", []string{"search", "café", dir}, snaperrors.ErrCodeInvalidQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assertCode(t, err, tt.code)
		})
	}
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	_, err := run(t, "search")
	assert.Error(t, err)
}
