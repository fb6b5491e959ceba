package watcher

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Options configures a Watcher. Zero durations take the defaults below.
type Options struct {
	// Quiet is how long the tree must stay unchanged before a batch is
	// delivered. Default 500ms.
	Quiet time.Duration
	// MaxWait bounds how long a change can wait for quiet. Default 5s.
	MaxWait time.Duration
	// PollInterval is the rescan period in polling mode. Default 2s.
	PollInterval time.Duration

	// MaxDepth stops watching below this directory depth (0 = unbounded).
	MaxDepth int
	// IgnoreNames are base names never reported, together with their
	// "<name>.*" siblings. The index file goes here.
	IgnoreNames []string

	ForcePolling bool
}

func (o Options) withDefaults() Options {
	if o.Quiet <= 0 {
		o.Quiet = 500 * time.Millisecond
	}
	if o.MaxWait <= 0 {
		o.MaxWait = 5 * time.Second
	}
	o.MaxWait = max(o.MaxWait, o.Quiet)
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	return o
}

// filter decides which paths under root are watched and reported.
type filter struct {
	root     string
	maxDepth int
	names    []string
}

func newFilter(root string, opts Options) *filter {
	return &filter{root: root, maxDepth: opts.MaxDepth, names: opts.IgnoreNames}
}

// rel returns p relative to the root, slash-separated.
func (f *filter) rel(p string) string {
	r, err := filepath.Rel(f.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

// skip reports whether rel is outside the watched set. Directories at or
// below MaxDepth are skipped; files directly inside them are not.
func (f *filter) skip(rel string, isDir bool) bool {
	if rel == "." || rel == "" {
		return true
	}
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return true
	}
	base := path.Base(rel)
	for _, n := range f.names {
		if base == n || strings.HasPrefix(base, n+".") {
			return true
		}
	}
	return isDir && f.maxDepth > 0 && strings.Count(rel, "/")+1 >= f.maxDepth
}

// classify flags changes to configuration files.
func (f *filter) classify(c Change) Change {
	if !c.IsDir && isConfigFile(c.Path) {
		c.Op = ConfigChanged
	}
	return c
}

// walk visits the root and every watched entry below it. Unreadable
// entries are skipped.
func (f *filter) walk(fn func(p, rel string, d fs.DirEntry) error) error {
	return filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel := f.rel(p)
		if rel != "." && f.skip(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return fn(p, rel, d)
	})
}

func isConfigFile(rel string) bool {
	switch path.Base(rel) {
	case ".snapfind.yaml", ".snapfind.yml":
		return true
	}
	return false
}
