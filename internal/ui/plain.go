package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// PlainRenderer writes one uncoloured line per event, suitable for logs.
type PlainRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	errors []ErrorEvent
}

func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

// UpdateProgress prints "[TAG] files/max files, N dirs: detail". Events with
// neither counts nor detail are dropped.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	var line strings.Builder
	if event.Files > 0 || event.MaxFiles > 0 {
		fmt.Fprintf(&line, "%d", event.Files)
		if event.MaxFiles > 0 {
			fmt.Fprintf(&line, "/%d", event.MaxFiles)
		}
		line.WriteString(" files")
		if event.Dirs > 0 {
			fmt.Fprintf(&line, ", %d dirs", event.Dirs)
		}
	}
	if d := event.detail(); d != "" {
		if line.Len() > 0 {
			line.WriteString(": ")
		}
		line.WriteString(d)
	}
	if line.Len() == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Tag(), line.String())
}

func (r *PlainRenderer) AddError(event ErrorEvent) {
	level := "ERROR"
	if event.IsWarn {
		level = "WARN"
	}
	subject := ""
	if event.File != "" {
		subject = event.File + ": "
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, event)
	_, _ = fmt.Fprintf(r.out, "%s: %s%v\n", level, subject, event.Err)
}

func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := fmt.Sprintf("Complete: %d files indexed, %d skipped, %d directories in %s",
		stats.Files, stats.Skipped, stats.Dirs, stats.Duration.Round(100*time.Millisecond))
	if stats.Errors+stats.Warnings > 0 {
		summary += fmt.Sprintf(" (%d errors, %d warnings)", stats.Errors, stats.Warnings)
	}
	_, _ = fmt.Fprintln(r.out, summary)
	if stats.IndexPath != "" {
		_, _ = fmt.Fprintln(r.out, "Index saved to", stats.IndexPath)
	}
}

// Errors returns a copy of the error events seen so far.
func (r *PlainRenderer) Errors() []ErrorEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ErrorEvent(nil), r.errors...)
}
