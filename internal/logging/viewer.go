package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
)

// LogEntry is one line of a log file. Lines that are not JSON records
// keep only Raw and have IsValid false.
type LogEntry struct {
	Time    time.Time
	Level   string
	Msg     string
	PID     int
	Attrs   map[string]any
	Raw     string
	IsValid bool
}

// ViewerConfig selects which entries are shown and how.
type ViewerConfig struct {
	Level   string         // minimum level
	Pattern *regexp.Regexp // matched against the raw line
	PID     int            // only this process, when non-zero
	NoColor bool
}

// Viewer reads and prints snapfind log files, including the numbered
// files left by rotation.
type Viewer struct {
	cfg    ViewerConfig
	out    io.Writer
	styles map[string]lipgloss.Style
}

func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	v := &Viewer{cfg: cfg, out: out}
	if cfg.NoColor {
		return v
	}
	color := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	v.styles = map[string]lipgloss.Style{
		"DEBUG": color("8"),
		"INFO":  color("10"),
		"WARN":  color("11"),
		"ERROR": color("9").Bold(true),
	}
	return v
}

// Tail returns the matching entries among the last n lines written to
// path. When path holds fewer than n lines the rotated files path.1,
// path.2, ... are read too, oldest first in the result.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, snaperrors.IOError("failed to open log file", err).WithDetail("path", path)
	}

	var lines []string
	for i := 0; len(lines) < n; i++ {
		name := path
		if i > 0 {
			name = fmt.Sprintf("%s.%d", path, i)
		}
		older, err := lastLines(name, n-len(lines))
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return nil, snaperrors.IOError("failed to read log file", err).WithDetail("path", name)
		}
		lines = append(older, lines...)
	}

	var entries []LogEntry
	for _, line := range lines {
		if e := v.parse(line); v.keep(e) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// lastLines returns up to n trailing non-empty lines of the file.
func lastLines(name string, n int) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, 0, n)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		if sc.Text() == "" {
			continue
		}
		if len(ring) == n {
			ring = slices.Delete(ring, 0, 1)
		}
		ring = append(ring, sc.Text())
	}
	return ring, sc.Err()
}

// Follow sends entries appended to path until ctx is done. The log's
// directory is watched so that following continues from the new file
// after a rotation.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	f, err := os.Open(path)
	if err != nil {
		return snaperrors.IOError("failed to open log file", err).WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return snaperrors.IOError("failed to seek log file", err).WithDetail("path", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return snaperrors.IOError("failed to create log watcher", err)
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return snaperrors.IOError("failed to watch log directory", err).WithDetail("path", path)
	}

	r := bufio.NewReader(f)
	var partial []byte
	// drain sends complete lines; false means ctx ended while sending.
	drain := func() bool {
		for {
			chunk, err := r.ReadBytes('\n')
			partial = append(partial, chunk...)
			if err != nil {
				return true
			}
			line := string(bytes.TrimSpace(partial))
			partial = partial[:0]
			if line == "" {
				continue
			}
			if e := v.parse(line); v.keep(e) {
				select {
				case entries <- e:
				case <-ctx.Done():
					return false
				}
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// Rotated: finish the old file, then start on the new one.
				if !drain() {
					return nil
				}
				next, err := os.Open(path)
				if err != nil {
					continue
				}
				_ = f.Close()
				f, partial = next, partial[:0]
				r.Reset(f)
			}
			if !drain() {
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return snaperrors.IOError("log watcher failed", err)
		}
	}
}

// FormatEntry renders "15:04:05.000 LEVEL msg k=v ..." with attributes
// sorted by key and groups flattened to dotted keys. Invalid lines are
// returned raw.
func (v *Viewer) FormatEntry(e LogEntry) string {
	if !e.IsValid {
		return e.Raw
	}
	flat := make(map[string]any)
	flatten("", e.Attrs, flat)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", e.Time.Format("15:04:05.000"), v.level(e.Level), e.Msg)
	for _, k := range slices.Sorted(maps.Keys(flat)) {
		fmt.Fprintf(&b, " %s=%v", k, flat[k])
	}
	return b.String()
}

func flatten(prefix string, attrs map[string]any, into map[string]any) {
	for k, val := range attrs {
		if prefix != "" {
			k = prefix + "." + k
		}
		if group, ok := val.(map[string]any); ok {
			flatten(k, group, into)
			continue
		}
		into[k] = val
	}
}

func (v *Viewer) Print(entries []LogEntry) {
	for _, e := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(e))
	}
}

// record holds the fields every snapfind log line has.
type record struct {
	Time  time.Time `json:"time"`
	Level string    `json:"level"`
	Msg   string    `json:"msg"`
	PID   int       `json:"pid"`
}

func (v *Viewer) parse(line string) LogEntry {
	e := LogEntry{Raw: line}
	var rec record
	var attrs map[string]any
	if json.Unmarshal([]byte(line), &rec) != nil || json.Unmarshal([]byte(line), &attrs) != nil {
		return e
	}
	for _, k := range []string{"time", "level", "msg", "pid"} {
		delete(attrs, k)
	}
	e.Time, e.Level, e.Msg, e.PID = rec.Time, rec.Level, rec.Msg, rec.PID
	e.Attrs, e.IsValid = attrs, true
	return e
}

func (v *Viewer) keep(e LogEntry) bool {
	switch {
	case v.cfg.Level != "" && LevelFromString(e.Level) < LevelFromString(v.cfg.Level):
		return false
	case v.cfg.PID != 0 && e.PID != v.cfg.PID:
		return false
	case v.cfg.Pattern != nil && !v.cfg.Pattern.MatchString(e.Raw):
		return false
	}
	return true
}

func (v *Viewer) level(name string) string {
	name = strings.ToUpper(name)
	padded := fmt.Sprintf("%-5.5s", name)
	if style, ok := v.styles[name]; ok {
		return style.Render(padded)
	}
	return padded
}
