package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StyledRenderer prints colored progress lines for interactive terminals.
type StyledRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	styles  Styles
	header  bool
	rootDir string
}

// NewStyledRenderer creates a renderer using lipgloss styles.
func NewStyledRenderer(cfg Config) *StyledRenderer {
	return &StyledRenderer{
		out:     cfg.Output,
		styles:  GetStyles(cfg.NoColor),
		rootDir: cfg.RootDir,
	}
}

func (r *StyledRenderer) printHeader() {
	if r.header {
		return
	}
	r.header = true
	title := "SnapFind"
	if r.rootDir != "" {
		title += " " + r.styles.Label.Render(r.rootDir)
	}
	_, _ = fmt.Fprintln(r.out, r.styles.Header.Render(title))
}

// UpdateProgress implements Renderer.
func (r *StyledRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printHeader()

	stage := r.styles.Stage.Render(fmt.Sprintf("%-9s", event.Stage.String()))
	msg := event.detail()
	switch {
	case event.MaxFiles > 0:
		count := r.styles.Success.Render(fmt.Sprintf("%d", event.Files))
		_, _ = fmt.Fprintf(r.out, "  %s %s/%d %s %s\n", stage, count, event.MaxFiles,
			r.styles.Label.Render(fmt.Sprintf("[%d dirs]", event.Dirs)), r.styles.Dim.Render(msg))
	case msg != "":
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", stage, msg)
	}
}

// AddError implements Renderer.
func (r *StyledRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printHeader()

	label := r.styles.Error.Render("error")
	if event.IsWarn {
		label = r.styles.Warning.Render("warn ")
	}
	if event.File != "" {
		_, _ = fmt.Fprintf(r.out, "  %s %s %v\n", label, r.styles.Label.Render(event.File), event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "  %s %v\n", label, event.Err)
	}
}

// Complete implements Renderer.
func (r *StyledRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printHeader()

	summary := fmt.Sprintf("%d files indexed", stats.Files)
	_, _ = fmt.Fprintf(r.out, "%s %s %s\n",
		r.styles.Success.Render("✓"),
		summary,
		r.styles.Label.Render(fmt.Sprintf("(%d skipped, %d dirs, %s)",
			stats.Skipped, stats.Dirs, stats.Duration.Round(100*time.Millisecond))))

	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.styles.Warning.Render(
			fmt.Sprintf("%d errors, %d warnings", stats.Errors, stats.Warnings)))
	}
	if stats.IndexPath != "" {
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("index"), stats.IndexPath)
	}
}
