package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
)

// Watcher watches one directory tree.
type Watcher struct {
	opts   Options
	filter *filter
	notify *fsnotify.Watcher // nil in polling mode

	batches chan []Change
	errs    chan error
	ready   chan struct{}
	started atomic.Bool
}

// New prepares a watcher for root. fsnotify is tried first unless
// opts.ForcePolling is set.
func New(root string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, snaperrors.IOError("failed to resolve watch root", err).WithDetail("path", root)
	}
	opts = opts.withDefaults()

	w := &Watcher{
		opts:    opts,
		filter:  newFilter(abs, opts),
		batches: make(chan []Change, 1),
		errs:    make(chan error, 8),
		ready:   make(chan struct{}),
	}
	if !opts.ForcePolling {
		n, err := fsnotify.NewWatcher()
		if err == nil {
			w.notify = n
			return w, nil
		}
		slog.Warn("fsnotify_unavailable_polling", snaperrors.LogAttr(err))
	}
	return w, nil
}

// Mode is "fsnotify" or "polling".
func (w *Watcher) Mode() string {
	if w.notify != nil {
		return "fsnotify"
	}
	return "polling"
}

// Ready is closed once the initial tree is registered or scanned.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Batches delivers sorted, merged changes. It is closed when Run returns.
func (w *Watcher) Batches() <-chan []Change { return w.batches }

// Errors delivers non-fatal watch errors. It is closed when Run returns.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Run watches until ctx is done or the tree cannot be watched, and
// returns ctx.Err() in the first case. It may be called once.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watcher: Run called more than once")
	}
	if info, err := os.Stat(w.filter.root); err != nil || !info.IsDir() {
		if w.notify != nil {
			_ = w.notify.Close()
		}
		close(w.batches)
		close(w.errs)
		if err == nil {
			return snaperrors.New(snaperrors.ErrCodeNotADirectory, "watch root is not a directory", nil).
				WithDetail("path", w.filter.root)
		}
		return snaperrors.IOError("cannot watch root", err).WithDetail("path", w.filter.root)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan Change, 256)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		batch(ctx, in, w.batches, w.opts.Quiet, w.opts.MaxWait)
	}()
	emit := func(c Change) {
		select {
		case in <- w.filter.classify(c):
		case <-ctx.Done():
		}
	}

	var err error
	if w.notify != nil {
		err = w.runNotify(ctx, emit)
	} else {
		err = w.runPoll(ctx, emit)
	}

	cancel()
	wg.Wait()
	close(w.errs)
	return err
}

func (w *Watcher) report(err error) {
	select {
	case w.errs <- err:
	default:
		slog.Debug("watcher_error_dropped", snaperrors.LogAttr(err))
	}
}

func (w *Watcher) runNotify(ctx context.Context, emit func(Change)) error {
	defer func() { _ = w.notify.Close() }()

	err := w.filter.walk(func(p, _ string, d fs.DirEntry) error {
		if d.IsDir() {
			return w.notify.Add(p)
		}
		return nil
	})
	if err != nil {
		return snaperrors.IOError("failed to watch directory tree", err).WithDetail("path", w.filter.root)
	}
	close(w.ready)
	slog.Debug("watcher_started",
		slog.String("root", w.filter.root),
		slog.String("mode", w.Mode()),
		slog.Int("dirs", len(w.notify.WatchList())))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.notify.Events:
			if !ok {
				return nil
			}
			if c, keep := w.translate(ev); keep {
				emit(c)
			}
		case err, ok := <-w.notify.Errors:
			if !ok {
				return nil
			}
			w.report(err)
		}
	}
}

// translate maps an fsnotify event to a Change and starts watching
// directories as they appear. Chmod-only events are dropped.
func (w *Watcher) translate(ev fsnotify.Event) (Change, bool) {
	rel := w.filter.rel(ev.Name)
	info, err := os.Lstat(ev.Name)
	isDir := err == nil && info.IsDir()
	if w.filter.skip(rel, isDir) {
		return Change{}, false
	}

	c := Change{Path: rel, IsDir: isDir}
	switch {
	case ev.Has(fsnotify.Create):
		c.Op = Created
		if isDir {
			w.watchTree(ev.Name)
		}
	case ev.Has(fsnotify.Write):
		c.Op = Changed
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		c.Op = Removed
	default:
		return Change{}, false
	}
	return c, true
}

// watchTree adds dir and any subdirectories created before the watch on
// dir was registered.
func (w *Watcher) watchTree(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.filter.skip(w.filter.rel(p), true) {
			return filepath.SkipDir
		}
		if err := w.notify.Add(p); err != nil {
			w.report(err)
		}
		return nil
	})
}

type entryState struct {
	modTime time.Time
	size    int64
	isDir   bool
}

func (w *Watcher) runPoll(ctx context.Context, emit func(Change)) error {
	prev, err := w.scan()
	if err != nil {
		return snaperrors.IOError("initial scan failed", err).WithDetail("path", w.filter.root)
	}
	close(w.ready)
	slog.Debug("watcher_started",
		slog.String("root", w.filter.root),
		slog.String("mode", w.Mode()),
		slog.Int("entries", len(prev)))

	tick := time.NewTicker(w.opts.PollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			cur, err := w.scan()
			if err != nil {
				w.report(snaperrors.IOError("rescan failed", err))
				continue
			}
			for _, c := range diff(prev, cur) {
				emit(c)
			}
			prev = cur
		}
	}
}

func (w *Watcher) scan() (map[string]entryState, error) {
	state := make(map[string]entryState)
	err := w.filter.walk(func(_, rel string, d fs.DirEntry) error {
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		state[rel] = entryState{modTime: info.ModTime(), size: info.Size(), isDir: d.IsDir()}
		return nil
	})
	return state, err
}

// diff lists what changed between two scans, ordered by path. Directory
// metadata changes are not reported.
func diff(prev, cur map[string]entryState) []Change {
	set := make(changeSet)
	for rel, now := range cur {
		was, existed := prev[rel]
		switch {
		case !existed:
			set.add(Change{Path: rel, Op: Created, IsDir: now.isDir})
		case !now.isDir && (was.modTime != now.modTime || was.size != now.size):
			set.add(Change{Path: rel, Op: Changed})
		}
	}
	for rel, was := range prev {
		if _, ok := cur[rel]; !ok {
			set.add(Change{Path: rel, Op: Removed, IsDir: was.isDir})
		}
	}
	return set.sorted()
}
