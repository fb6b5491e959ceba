package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/limits"
	"github.com/Aman-CERP/snapfind/internal/search"
	"github.com/Aman-CERP/snapfind/internal/ui"
)

// MockRenderer implements ui.Renderer for testing.
type MockRenderer struct {
	CompleteCalled  bool
	ProgressEvents  []ui.ProgressEvent
	ErrorEvents     []ui.ErrorEvent
	CompletionStats ui.CompletionStats
}

func (m *MockRenderer) UpdateProgress(event ui.ProgressEvent) {
	m.ProgressEvents = append(m.ProgressEvents, event)
}

func (m *MockRenderer) AddError(event ui.ErrorEvent) {
	m.ErrorEvents = append(m.ErrorEvents, event)
}

func (m *MockRenderer) Complete(stats ui.CompletionStats) {
	m.CompleteCalled = true
	m.CompletionStats = stats
}

func (m *MockRenderer) stages() []ui.Stage {
	var out []ui.Stage
	for _, e := range m.ProgressEvents {
		out = append(out, e.Stage)
	}
	return out
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func testConfig(root string) RunnerConfig {
	return RunnerConfig{RootDir: root, Limits: limits.Default()}
}

func TestRunner_Build_IndexesTextAndSkipsBinary(t *testing.T) {
	// Given: a tree with text files and one binary file
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"), []byte("# Hello\n\nsnapfind docs\n"))
	writeFile(t, filepath.Join(root, "src", "main.go"), []byte("package main\n\nfunc main() {}\n"))
	writeFile(t, filepath.Join(root, "logo.png"), []byte{0x89, 'P', 'N', 'G', 0, 0, 0, 0x0d})

	r := NewRunner(&MockRenderer{})

	// When: building
	engine, result, err := r.Build(context.Background(), testConfig(root))

	// Then: both text files are indexed with root-relative slash paths
	require.NoError(t, err)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.Dirs)

	var paths []string
	for _, d := range engine.Documents() {
		paths = append(paths, d.Path)
	}
	assert.ElementsMatch(t, []string{"README.md", "src/main.go"}, paths)
}

func TestRunner_Build_ContentIsSearchable(t *testing.T) {
	// Given: an indexed tree
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes.txt"), []byte("the quick brown fox\n"))
	writeFile(t, filepath.Join(root, "other.txt"), []byte("nothing relevant\n"))

	engine, _, err := NewRunner(nil).Build(context.Background(), testConfig(root))
	require.NoError(t, err)

	// When: searching a content term
	results, err := engine.Search("fox")

	// Then: only the matching file is returned
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "notes.txt", results[0].Path)
}

func TestRunner_Build_ReportsProgressEveryInterval(t *testing.T) {
	// Given: five text files and an interval of two
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		writeFile(t, filepath.Join(root, name+".txt"), []byte("text "+name+"\n"))
	}
	mock := &MockRenderer{}
	cfg := testConfig(root)
	cfg.ProgressInterval = 2

	// When: building
	_, _, err := NewRunner(mock).Build(context.Background(), cfg)

	// Then: one crawl event plus two indexing events
	require.NoError(t, err)
	assert.Equal(t, []ui.Stage{ui.StageCrawling, ui.StageIndexing, ui.StageIndexing}, mock.stages())
	assert.Equal(t, 2, mock.ProgressEvents[1].Files)
	assert.Equal(t, 4, mock.ProgressEvents[2].Files)
	assert.Equal(t, cfg.Limits.MaxFiles, mock.ProgressEvents[2].MaxFiles)
	assert.Equal(t, 1, mock.ProgressEvents[2].Dirs)
}

func TestRunner_Build_ReadErrorsAreSkipped(t *testing.T) {
	// Given: a runner whose reads fail for one file
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good.txt"), []byte("fine\n"))
	writeFile(t, filepath.Join(root, "bad.txt"), []byte("unreadable\n"))

	mock := &MockRenderer{}
	r := NewRunner(mock)
	r.readFile = func(path string) ([]byte, error) {
		if strings.HasSuffix(path, "bad.txt") {
			return nil, errors.New("permission denied")
		}
		return os.ReadFile(path)
	}

	// When: building
	engine, result, err := r.Build(context.Background(), testConfig(root))

	// Then: the build succeeds and the failure is counted and reported
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 1, engine.Len())
	require.Len(t, mock.ErrorEvents, 1)
	assert.False(t, mock.ErrorEvents[0].IsWarn)
}

func TestRunner_Build_Oversized(t *testing.T) {
	tests := []struct {
		name          string
		skipOversized bool
		wantErr       bool
	}{
		{name: "aborts by default", skipOversized: false, wantErr: true},
		{name: "skips when configured", skipOversized: true, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a text file larger than MaxContentLength
			root := t.TempDir()
			writeFile(t, filepath.Join(root, "big.txt"), []byte(strings.Repeat("word ", 40)))
			writeFile(t, filepath.Join(root, "small.txt"), []byte("tiny\n"))

			cfg := testConfig(root)
			cfg.Limits.MaxContentLength = 100
			cfg.SkipOversized = tt.skipOversized
			mock := &MockRenderer{}

			// When: building
			_, result, err := NewRunner(mock).Build(context.Background(), cfg)

			// Then
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, snaperrors.ErrContentTooLarge)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, result.Files)
			assert.Equal(t, 1, result.Oversized)
			require.Len(t, mock.ErrorEvents, 1)
			assert.True(t, mock.ErrorEvents[0].IsWarn)
		})
	}
}

func TestRunner_Build_LimitErrorsAbort(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*limits.Limits)
		wantErr error
	}{
		{
			name:    "too many files",
			mutate:  func(l *limits.Limits) { l.MaxFiles = 2 },
			wantErr: snaperrors.ErrFileCountExceeded,
		},
		{
			name:    "too many documents",
			mutate:  func(l *limits.Limits) { l.MaxDocuments = 2 },
			wantErr: snaperrors.ErrTooManyDocuments,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: three text files and a limit of two
			root := t.TempDir()
			for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
				writeFile(t, filepath.Join(root, name), []byte("content\n"))
			}
			cfg := testConfig(root)
			tt.mutate(&cfg.Limits)

			// When: building
			engine, result, err := NewRunner(nil).Build(context.Background(), cfg)

			// Then: the typed limit error propagates
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, engine)
			assert.Nil(t, result)
		})
	}
}

func TestRunner_Build_MissingRoot(t *testing.T) {
	// Given: a root that does not exist
	root := filepath.Join(t.TempDir(), "missing")

	// When: building
	_, _, err := NewRunner(nil).Build(context.Background(), testConfig(root))

	// Then: a not-found error is returned before crawling
	require.Error(t, err)
	assert.Equal(t, snaperrors.ErrCodeNotFound, snaperrors.GetCode(err))
}

func TestValidateRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	writeFile(t, file, []byte("x"))

	assert.NoError(t, ValidateRoot(dir))
	assert.Equal(t, snaperrors.ErrCodeNotADirectory, snaperrors.GetCode(ValidateRoot(file)))
	assert.Equal(t, snaperrors.ErrCodeNotFound, snaperrors.GetCode(ValidateRoot(filepath.Join(dir, "nope"))))
}

func TestRunner_Build_CancelledContext(t *testing.T) {
	// Given: a cancelled context
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("content\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// When: building
	_, _, err := NewRunner(nil).Build(ctx, testConfig(root))

	// Then: the context error is returned
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_Run_SavesIndex(t *testing.T) {
	// Given: a tree with text files
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("alpha\n"))
	writeFile(t, filepath.Join(root, "docs", "b.md"), []byte("# beta\n"))
	mock := &MockRenderer{}

	// When: running
	result, err := NewRunner(mock).Run(context.Background(), testConfig(root))

	// Then: the index is written at the default location and loads back
	require.NoError(t, err)
	wantPath := filepath.Join(root, search.DefaultIndexFile)
	assert.Equal(t, wantPath, result.IndexPath)

	loaded, err := search.Load(wantPath, limits.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	assert.True(t, mock.CompleteCalled)
	assert.Equal(t, 2, mock.CompletionStats.Files)
	assert.Equal(t, wantPath, mock.CompletionStats.IndexPath)
	assert.Contains(t, mock.stages(), ui.StageSaving)
}

func TestRunner_Run_ReindexIgnoresOwnIndex(t *testing.T) {
	// Given: a directory that has already been indexed
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("alpha\n"))
	_, err := NewRunner(nil).Run(context.Background(), testConfig(root))
	require.NoError(t, err)

	// When: indexing again
	result, err := NewRunner(nil).Run(context.Background(), testConfig(root))

	// Then: the index file is not treated as input
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 0, result.Skipped)
}

func TestRunner_Run_ReindexUnderTightLimits(t *testing.T) {
	body := []byte(strings.Repeat("alpha beta gamma delta\n", 36))
	tests := []struct {
		name   string
		limits func() limits.Limits
	}{
		{"saved index larger than max file size", limits.FreeTier},
		{"file count equal to max files", func() limits.Limits {
			l := limits.Default()
			l.MaxFiles = 3
			return l
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: three text files and limits with no room for the index files
			root := t.TempDir()
			for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
				writeFile(t, filepath.Join(root, name), body)
			}
			cfg := RunnerConfig{RootDir: root, Limits: tt.limits()}

			first, err := NewRunner(nil).Run(context.Background(), cfg)
			require.NoError(t, err)
			require.Equal(t, 3, first.Files)
			info, err := os.Stat(first.IndexPath)
			require.NoError(t, err)
			require.Greater(t, info.Size(), int64(1024))

			// When: indexing the same tree again, index and lock file present
			second, err := NewRunner(nil).Run(context.Background(), cfg)

			// Then: the run succeeds and sees only the real files
			require.NoError(t, err)
			assert.Equal(t, 3, second.Files)
			assert.Equal(t, 0, second.Skipped)
		})
	}
}

func TestRunner_ConcurrentReindex(t *testing.T) {
	// Given: one runner shared by several callers
	root := t.TempDir()
	for i := range 40 {
		writeFile(t, filepath.Join(root, fmt.Sprintf("f%02d.txt", i)), []byte("line one\nline two\n"))
	}
	writeFile(t, filepath.Join(root, "blob.bin"), []byte{0x7f, 'E', 'L', 'F', 0, 0, 0, 0})
	r := NewRunner(nil)

	// When: reindexing from several goroutines at once
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			engine, result, err := r.Reindex(context.Background(), testConfig(root))
			if err != nil {
				return err
			}
			if result.Files != 40 || result.Skipped != 1 || engine.Len() != 40 {
				return fmt.Errorf("files=%d skipped=%d docs=%d", result.Files, result.Skipped, engine.Len())
			}
			return nil
		})
	}

	// Then: every run classifies the same tree the same way
	require.NoError(t, g.Wait())
}

func TestRunner_Run_NoTextFiles(t *testing.T) {
	// Given: a directory containing only binary data
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blob.bin"), []byte{0, 1, 2, 3, 0, 0})
	mock := &MockRenderer{}

	// When: running
	result, err := NewRunner(mock).Run(context.Background(), testConfig(root))

	// Then: nothing is saved and no error is reported
	require.NoError(t, err)
	assert.Empty(t, result.IndexPath)
	assert.True(t, mock.CompleteCalled)
	_, statErr := os.Stat(filepath.Join(root, search.DefaultIndexFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunner_Run_AllReadsFailed(t *testing.T) {
	// Given: every read fails
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("alpha\n"))
	r := NewRunner(nil)
	r.readFile = func(string) ([]byte, error) { return nil, errors.New("boom") }

	// When: running
	_, err := r.Run(context.Background(), testConfig(root))

	// Then: the run fails with an index error
	require.Error(t, err)
	assert.Equal(t, snaperrors.ErrCodeIndexFailed, snaperrors.GetCode(err))
}

func TestRunner_Run_CustomIndexPath(t *testing.T) {
	// Given: an explicit index path outside the root
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("alpha\n"))
	indexPath := filepath.Join(t.TempDir(), "custom.idx")
	cfg := testConfig(root)
	cfg.IndexPath = indexPath

	// When: running
	result, err := NewRunner(nil).Run(context.Background(), cfg)

	// Then: the index lands at the custom path
	require.NoError(t, err)
	assert.Equal(t, indexPath, result.IndexPath)
	assert.FileExists(t, indexPath)
}

func TestLoadOrBuild(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, root string)
		wantRebuilt bool
	}{
		{
			name: "loads existing index",
			setup: func(t *testing.T, root string) {
				_, err := NewRunner(nil).Run(context.Background(), testConfig(root))
				require.NoError(t, err)
			},
			wantRebuilt: false,
		},
		{
			name:        "rebuilds when index is missing",
			setup:       func(t *testing.T, root string) {},
			wantRebuilt: true,
		},
		{
			name: "rebuilds when index is corrupt",
			setup: func(t *testing.T, root string) {
				writeFile(t, filepath.Join(root, search.DefaultIndexFile), []byte("JUNKDATA"))
			},
			wantRebuilt: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a tree with one text file in the prepared state
			root := t.TempDir()
			writeFile(t, filepath.Join(root, "a.txt"), []byte("alpha beta\n"))
			tt.setup(t, root)

			// When: loading or building
			engine, rebuilt, err := LoadOrBuild(context.Background(), NewRunner(nil), testConfig(root))

			// Then: the engine holds the file either way
			require.NoError(t, err)
			assert.Equal(t, tt.wantRebuilt, rebuilt)
			require.Equal(t, 1, engine.Len())
			assert.Equal(t, "a.txt", engine.Document(0).Path)
		})
	}
}

func TestIndexPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("/x", search.DefaultIndexFile), IndexPathFor("/x", ""))
	assert.Equal(t, filepath.Join("/x", "idx"), IndexPathFor("/x", "idx"))
}
