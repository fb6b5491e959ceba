package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
)

// isolate points user config and logs at temp dirs and clears SNAPFIND_ env.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	for _, k := range []string{"PROFILE", "INDEX_FILE", "LOG_LEVEL", "MAX_FILES", "MAX_DEPTH", "MAX_DOCUMENTS", "LOG_DIR"} {
		t.Setenv("SNAPFIND_"+k, "")
		require.NoError(t, os.Unsetenv("SNAPFIND_"+k))
	}
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// project creates a small tree to index.
func newProjectDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"README.md":         "SnapFind sample project readme",
		"src/main.go":       "package main\n\nfunc main() { loadConfig() }\n",
		"src/config.go":     "package main\n\nfunc loadConfig() {}\n",
		"docs/guide.md":     "a guide to the config loader",
		"assets/logo.bin":   "\x00\x01\x02\x03PNG\x00\x00",
		"notes/todo.txt":    "buy milk",
		"notes/archive.txt": "old notes",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, snaperrors.GetCode(err), "error: %v", err)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"index", "search", "serve", "status", "config", "logs", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_DebugFlagWritesLogFile(t *testing.T) {
	// Given: an isolated home directory
	isolate(t)
	dir := newProjectDir(t)

	// When: indexing with --debug
	_, err := run(t, "--debug", "index", "--plain", dir)

	// Then: a JSON log file is created under ~/.snapfind/logs
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	data, err := os.ReadFile(filepath.Join(home, ".snapfind", "logs", "snapfind.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"debug_logging_enabled"`)
	assert.Contains(t, string(data), `"msg":"index_complete"`)
}

func TestRootCmd_ProfileFlags(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.prof")
	heap := filepath.Join(dir, "heap.prof")

	_, err := run(t, "--profile-cpu", cpu, "--profile-mem", heap, "version", "--short")

	require.NoError(t, err)
	assert.FileExists(t, cpu)
	assert.FileExists(t, heap)
}
