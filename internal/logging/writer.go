package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
)

// RotatingWriter appends to a log file and rotates it by size, keeping
// path.1 (newest) through path.<keep> (oldest).
//
// Several snapfind processes may share one log file, e.g. a server and a
// CLI run with --debug. Rotation happens under <path>.lock, and a writer
// whose file was rotated away by another process reopens the live path
// instead of rotating again.
type RotatingWriter struct {
	path    string
	limit   int64
	keep    int
	rotLock *flock.Flock

	mu   sync.Mutex
	file *os.File
	size int64
}

// NewRotatingWriter opens path for appending, creating its directory.
// keep is raised to at least one.
func NewRotatingWriter(path string, maxSizeMB, keep int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, snaperrors.IOError("failed to create log directory", err).WithDetail("path", path)
	}
	w := &RotatingWriter{
		path:    path,
		limit:   int64(maxSizeMB) << 20,
		keep:    max(keep, 1),
		rotLock: flock.New(path + ".lock"),
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write syncs after every record so `snapfind logs -f` sees it at once.
// A failed rotation is reported on stderr and the write still goes to the
// current file.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size > 0 && w.size+int64(len(p)) > w.limit {
		if err := w.rotate(); err != nil {
			fmt.Fprintln(os.Stderr, "snapfind: log rotation failed:", err)
		}
	}
	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, err
	}
	return n, w.file.Sync()
}

func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// Close is idempotent.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeFile()
}

func (w *RotatingWriter) closeFile() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return snaperrors.IOError("failed to open log file", err).WithDetail("path", w.path)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return snaperrors.IOError("failed to stat log file", err).WithDetail("path", w.path)
	}
	w.file, w.size = f, st.Size()
	return nil
}

// movedAway reports whether the live path no longer names our open file.
func (w *RotatingWriter) movedAway() bool {
	if w.file == nil {
		return false
	}
	ours, err := w.file.Stat()
	if err != nil {
		return false
	}
	live, err := os.Stat(w.path)
	return err != nil || !os.SameFile(ours, live)
}

func (w *RotatingWriter) rotate() error {
	if err := w.rotLock.Lock(); err == nil {
		defer func() { _ = w.rotLock.Unlock() }()
	}

	if w.movedAway() {
		_ = w.closeFile()
		return w.open()
	}
	if err := w.closeFile(); err != nil {
		return snaperrors.IOError("failed to close log file", err)
	}

	numbered := func(n int) string { return fmt.Sprintf("%s.%d", w.path, n) }
	_ = os.Remove(numbered(w.keep))
	for n := w.keep - 1; n >= 1; n-- {
		_ = os.Rename(numbered(n), numbered(n+1))
	}
	if err := os.Rename(w.path, numbered(1)); err != nil && !os.IsNotExist(err) {
		return snaperrors.IOError("failed to rotate log file", err).WithDetail("path", w.path)
	}
	return w.open()
}
