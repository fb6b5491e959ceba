package crawler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/limits"
)

// writeTree creates files (with content) under root; names ending in "/" are directories.
func writeTree(t *testing.T, root string, entries map[string]string) {
	t.Helper()
	for name, content := range entries {
		path := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// drain runs the crawler to completion and returns every batch.
func drain(t *testing.T, c *Crawler) [][]string {
	t.Helper()
	var batches [][]string
	for {
		batch, ok, err := c.Next()
		require.NoError(t, err)
		if !ok {
			return batches
		}
		batches = append(batches, append([]string(nil), batch...))
	}
}

func TestCrawler_EmptyDirectory(t *testing.T) {
	// Given: an empty directory
	root := t.TempDir()
	c, err := New(root, limits.Default())
	require.NoError(t, err)

	// When: visiting it
	batch, ok, err := c.Next()

	// Then: one empty batch, then no more work
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, batch)

	_, ok, err = c.Next()
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, Progress{FilesSeen: 0, MaxFiles: limits.Default().MaxFiles, DirsSeen: 1}, c.Progress())
}

func TestCrawler_NestedTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":          "a",
		"sub/b.txt":      "b",
		"sub/deep/c.txt": "c",
	})

	c, err := New(root, limits.Default())
	require.NoError(t, err)

	batches := drain(t, c)

	require.Len(t, batches, 3)
	assert.Equal(t, []string{filepath.Join(root, "a.txt")}, batches[0])
	assert.Equal(t, []string{filepath.Join(root, "sub", "b.txt")}, batches[1])
	assert.Equal(t, []string{filepath.Join(root, "sub", "deep", "c.txt")}, batches[2])
	assert.Equal(t, 3, c.Progress().FilesSeen)
	assert.Equal(t, 3, c.Progress().DirsSeen)
}

func TestCrawler_VisitsMostRecentlyDiscoveredFirst(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/one.txt": "1",
		"b/two.txt": "2",
	})

	c, err := New(root, limits.Default())
	require.NoError(t, err)

	batches := drain(t, c)

	require.Len(t, batches, 3)
	assert.Empty(t, batches[0])
	// "b" sorts after "a", so it is pushed last and popped first.
	assert.Equal(t, []string{filepath.Join(root, "b", "two.txt")}, batches[1])
	assert.Equal(t, []string{filepath.Join(root, "a", "one.txt")}, batches[2])
}

func TestCrawler_BatchSortedByName(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"c.txt": "", "a.txt": "", "b.txt": ""})

	c, err := New(root, limits.Default())
	require.NoError(t, err)

	batch, ok, err := c.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "c.txt"),
	}, batch)
}

func TestCrawler_LimitErrors(t *testing.T) {
	tests := []struct {
		name     string
		tree     map[string]string
		mutate   func(*limits.Limits)
		sentinel error
	}{
		{
			name:     "depth exceeded",
			tree:     map[string]string{"d1/d2/": ""},
			mutate:   func(l *limits.Limits) { l.MaxDepth = 2 },
			sentinel: snaperrors.ErrDepthExceeded,
		},
		{
			name:     "pending stack full",
			tree:     map[string]string{"a/": "", "b/": "", "c/": ""},
			mutate:   func(l *limits.Limits) { l.MaxDepth = 2 },
			sentinel: snaperrors.ErrDepthExceeded,
		},
		{
			name:     "file count exceeded",
			tree:     map[string]string{"1.txt": "", "2.txt": "", "3.txt": ""},
			mutate:   func(l *limits.Limits) { l.MaxFiles = 2 },
			sentinel: snaperrors.ErrFileCountExceeded,
		},
		{
			name:     "file size exceeded",
			tree:     map[string]string{"big.txt": "12345"},
			mutate:   func(l *limits.Limits) { l.MaxFileSize = 4 },
			sentinel: snaperrors.ErrFileSizeExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.tree)
			l := limits.Default()
			tt.mutate(&l)

			c, err := New(root, l)
			require.NoError(t, err)

			var crawlErr error
			for {
				_, ok, err := c.Next()
				if err != nil {
					crawlErr = err
					break
				}
				if !ok {
					break
				}
			}

			require.Error(t, crawlErr)
			assert.True(t, errors.Is(crawlErr, tt.sentinel), "got %v", crawlErr)
			assert.True(t, snaperrors.IsLimit(crawlErr))
		})
	}
}

func TestCrawler_FileAtExactLimitsAccepted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"1.txt": "1234", "2.txt": "abcd"})
	l := limits.Default()
	l.MaxFiles = 2
	l.MaxFileSize = 4

	c, err := New(root, l)
	require.NoError(t, err)

	batches := drain(t, c)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
	assert.Equal(t, 2, c.Progress().FilesSeen)
}

func TestCrawler_RootPathTooLong(t *testing.T) {
	l := limits.Default()
	l.MaxPathLength = 5

	_, err := New("/a/very/long/root", l)

	require.Error(t, err)
	assert.True(t, errors.Is(err, snaperrors.ErrPathTooLong))
}

func TestCrawler_EntryPathTooLong(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a-rather-long-file-name.txt": ""})
	l := limits.Default()
	l.MaxPathLength = len(root) + 5

	c, err := New(root, l)
	require.NoError(t, err)

	_, _, err = c.Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, snaperrors.ErrPathTooLong))
}

func TestCrawler_ProgressIsMonotonic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"x/1.txt":   "",
		"x/2.txt":   "",
		"y/z/3.txt": "",
		"4.txt":     "",
	})

	c, err := New(root, limits.Default())
	require.NoError(t, err)

	prev := c.Progress()
	for {
		_, ok, err := c.Next()
		require.NoError(t, err)
		now := c.Progress()
		assert.GreaterOrEqual(t, now.FilesSeen, prev.FilesSeen)
		assert.GreaterOrEqual(t, now.DirsSeen, prev.DirsSeen)
		assert.LessOrEqual(t, now.FilesSeen, now.MaxFiles)
		prev = now
		if !ok {
			break
		}
	}
	assert.Equal(t, 4, prev.FilesSeen)
	assert.Equal(t, 4, prev.DirsSeen)
}

func TestCrawler_ProgressHasNoSideEffects(t *testing.T) {
	c, err := New(t.TempDir(), limits.Default())
	require.NoError(t, err)

	assert.Equal(t, c.Progress(), c.Progress())
}

func TestCrawler_Symlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.txt": "x", "dir/": ""})
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skip("symlinks not supported")
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "broken")))

	c, err := New(root, limits.Default())
	require.NoError(t, err)

	// Then: the file link is a file, the directory and broken links are skipped
	batches := drain(t, c)
	require.Len(t, batches, 2)
	assert.Equal(t, []string{filepath.Join(root, "link.txt"), filepath.Join(root, "real.txt")}, batches[0])
	assert.Equal(t, 2, c.Progress().DirsSeen)
	assert.Equal(t, 2, c.Progress().FilesSeen)
}

func TestCrawler_SymlinkToLargeFileIsSizeChecked(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(target, make([]byte, 64), 0o644))
	if err := os.Symlink(target, filepath.Join(root, "big.txt")); err != nil {
		t.Skip("symlinks not supported")
	}
	l := limits.Default()
	l.MaxFileSize = 32

	c, err := New(root, l)
	require.NoError(t, err)

	_, _, err = c.Next()
	assert.True(t, errors.Is(err, snaperrors.ErrFileSizeExceeded), "got %v", err)
}

func TestCrawler_WithSkip(t *testing.T) {
	tests := []struct {
		name   string
		limits func(l *limits.Limits)
	}{
		{"default limits", func(*limits.Limits) {}},
		{"skipped file over the size limit", func(l *limits.Limits) { l.MaxFileSize = 16 }},
		{"files at the count limit", func(l *limits.Limits) { l.MaxFiles = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: two small files, a large reserved file and a reserved directory
			root := t.TempDir()
			writeTree(t, root, map[string]string{
				"a.txt":           "a",
				"b.txt":           "b",
				".reserved":       strings.Repeat("x", 64),
				".cache/blob.bin": strings.Repeat("y", 64),
			})
			l := limits.Default()
			tt.limits(&l)
			skip := func(p string) bool {
				base := filepath.Base(p)
				return base == ".reserved" || base == ".cache"
			}

			// When: crawling with the skip predicate
			c, err := New(root, l, WithSkip(skip))
			require.NoError(t, err)
			batches := drain(t, c)

			// Then: skipped entries are invisible to every limit
			require.Len(t, batches, 1)
			assert.Equal(t, []string{filepath.Join(root, "a.txt"), filepath.Join(root, "b.txt")}, batches[0])
			assert.Equal(t, 1, c.Progress().DirsSeen)
		})
	}
}

func TestCrawler_PanicsWhenQueuedDirectoryVanishes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"gone/": ""})

	c, err := New(root, limits.Default())
	require.NoError(t, err)

	_, ok, err := c.Next()
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.Remove(filepath.Join(root, "gone")))

	assert.Panics(t, func() { _, _, _ = c.Next() })
}
