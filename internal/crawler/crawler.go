// Package crawler provides bounded directory traversal for SnapFind.
// It walks a directory tree depth-first and yields one batch of files
// per visited directory, failing with a typed limit error as soon as a
// configured bound is hit.
package crawler

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Aman-CERP/snapfind/internal/bounded"
	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/limits"
)

// pendingDir is a discovered directory waiting to be visited.
type pendingDir struct {
	path  string
	depth int
}

// Progress is a snapshot of crawl counters.
type Progress struct {
	FilesSeen int
	MaxFiles  int
	DirsSeen  int
}

// Crawler walks one directory tree. It is not safe for concurrent use.
type Crawler struct {
	limits  limits.Limits
	pending *bounded.Stack[pendingDir]
	batch   []string
	skip    func(path string) bool

	filesSeen int
	dirsSeen  int
	last      Progress
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithSkip ignores every entry whose joined path satisfies skip. Skipped
// entries count against no limit and are never descended into.
func WithSkip(skip func(path string) bool) Option {
	return func(c *Crawler) { c.skip = skip }
}

// New creates a Crawler rooted at root. The root counts as the first
// directory seen and sits at depth 0.
func New(root string, l limits.Limits, opts ...Option) (*Crawler, error) {
	if len(root) > l.MaxPathLength {
		return nil, snaperrors.PathTooLong(root, len(root), l.MaxPathLength)
	}

	c := &Crawler{
		limits:   l,
		pending:  bounded.NewStack[pendingDir](l.MaxDepth),
		skip:     func(string) bool { return false },
		dirsSeen: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.pending.Push(pendingDir{path: root, depth: 0}) {
		return nil, snaperrors.DepthExceeded(root, 0, l.MaxDepth)
	}
	c.last = c.Progress()
	return c, nil
}

// Progress returns the current counters. It has no side effects.
func (c *Crawler) Progress() Progress {
	return Progress{
		FilesSeen: c.filesSeen,
		MaxFiles:  c.limits.MaxFiles,
		DirsSeen:  c.dirsSeen,
	}
}

// Next visits the most recently discovered directory and returns the
// files accepted from it. ok is false once no directories remain; an
// empty batch with ok true means an empty directory was visited.
//
// The returned slice is reused by the next call.
//
// A queued directory that no longer exists, or is no longer a directory,
// means the tree changed under the crawl and Next panics.
func (c *Crawler) Next() (batch []string, ok bool, err error) {
	dir, ok := c.pending.Pop()
	if !ok {
		return nil, false, nil
	}

	info, statErr := os.Stat(dir.path)
	if statErr != nil || !info.IsDir() {
		panic(fmt.Sprintf("crawler: queued path %q is no longer a directory", dir.path))
	}

	entries, err := os.ReadDir(dir.path)
	if err != nil {
		return nil, false, snaperrors.IOError("failed to read directory", err).
			WithDetail("path", dir.path)
	}

	c.batch = c.batch[:0]
	for _, entry := range entries {
		if err := c.visit(dir, entry); err != nil {
			return nil, false, err
		}
	}

	c.checkInvariants()
	return c.batch, true, nil
}

func (c *Crawler) visit(dir pendingDir, entry fs.DirEntry) error {
	path := filepath.Join(dir.path, entry.Name())
	if c.skip(path) {
		return nil
	}
	if len(path) > c.limits.MaxPathLength {
		return snaperrors.PathTooLong(path, len(path), c.limits.MaxPathLength)
	}

	mode := entry.Type()
	switch {
	case mode&fs.ModeSymlink != 0:
		// A link to a regular file is a file. Links to directories are
		// not followed, which keeps the walk free of cycles.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			slog.Debug("skipping symlink", slog.String("path", path))
			return nil
		}
		return c.acceptFile(path, info.Size())

	case mode.IsDir():
		depth := dir.depth + 1
		if depth >= c.limits.MaxDepth {
			return snaperrors.DepthExceeded(path, depth, c.limits.MaxDepth)
		}
		if !c.pending.Push(pendingDir{path: path, depth: depth}) {
			return snaperrors.DepthExceeded(path, depth, c.limits.MaxDepth).
				WithDetail("pending", fmt.Sprint(c.pending.Len()))
		}
		c.dirsSeen++
		return nil

	case mode.IsRegular():
		info, err := entry.Info()
		if err != nil {
			return snaperrors.IOError("failed to stat file", err).WithDetail("path", path)
		}
		return c.acceptFile(path, info.Size())

	default:
		// Sockets, devices, and pipes are never indexed.
		return nil
	}
}

// acceptFile adds path to the batch. The batch needs no capacity of its
// own: filesSeen is checked against MaxFiles before every append.
func (c *Crawler) acceptFile(path string, size int64) error {
	if c.filesSeen >= c.limits.MaxFiles {
		return snaperrors.FileCountExceeded(c.limits.MaxFiles)
	}
	if size > c.limits.MaxFileSize {
		return snaperrors.FileSizeExceeded(path, size, c.limits.MaxFileSize)
	}
	c.batch = append(c.batch, path)
	c.filesSeen++
	return nil
}

// checkInvariants panics if the counters moved backwards or past their bound.
func (c *Crawler) checkInvariants() {
	now := c.Progress()
	if now.FilesSeen < c.last.FilesSeen || now.DirsSeen < c.last.DirsSeen {
		panic(fmt.Sprintf("crawler: counters decreased: %+v -> %+v", c.last, now))
	}
	if now.FilesSeen > now.MaxFiles {
		panic(fmt.Sprintf("crawler: files seen %d exceeds limit %d", now.FilesSeen, now.MaxFiles))
	}
	c.last = now
}
