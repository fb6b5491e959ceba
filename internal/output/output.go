// Package output formats CLI messages and search results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/search"
	"github.com/Aman-CERP/snapfind/internal/ui"
)

// Result output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Writer provides formatted output for the CLI.
type Writer struct {
	out    io.Writer
	styles ui.Styles
}

// New creates a Writer. Colors follow the terminal and NO_COLOR.
func New(out io.Writer) *Writer {
	noColor := ui.DetectNoColor() || !ui.IsTTY(out)
	return &Writer{out: out, styles: ui.GetStyles(noColor)}
}

// NewPlain creates a Writer that never emits escape sequences.
func NewPlain(out io.Writer) *Writer {
	return &Writer{out: out, styles: ui.NoColorStyles()}
}

// Status prints msg after a tag column. An empty tag indents msg to
// line up with tagged lines.
func (w *Writer) Status(tag, msg string) {
	if tag == "" {
		tag = strings.Repeat(" ", tagWidth)
	}
	_, _ = fmt.Fprintf(w.out, "%s %s\n", tag, msg)
}

func (w *Writer) Statusf(tag, format string, args ...any) {
	w.Status(tag, fmt.Sprintf(format, args...))
}

// tagWidth is the width of the widest tag, "WARN".
const tagWidth = 4

func (w *Writer) tagged(style lipgloss.Style, tag, msg string) {
	w.Status(style.Render(tag)+strings.Repeat(" ", tagWidth-len(tag)), msg)
}

// Success prints msg tagged OK.
func (w *Writer) Success(msg string) { w.tagged(w.styles.Success, "OK", msg) }

func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints msg tagged WARN. Warnings go to the same stream as
// results; callers that print JSON do not emit them.
func (w *Writer) Warning(msg string) { w.tagged(w.styles.Warning, "WARN", msg) }

func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Results prints search results in format ("text" or "json").
//
// Text output is one "score  path" line per result, best first.
// JSON output is an array of {"path","score"} objects ([] when empty).
func (w *Writer) Results(query string, results []search.SearchResult, format string) error {
	switch format {
	case FormatJSON:
		if results == nil {
			results = []search.SearchResult{}
		}
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return snaperrors.IOError("failed to write results", err)
		}
		return nil

	case FormatText, "":
		if len(results) == 0 {
			_, _ = fmt.Fprintln(w.out, w.styles.Dim.Render(fmt.Sprintf("No results for %q", query)))
			return nil
		}
		for _, r := range results {
			score := w.styles.Score.Render(fmt.Sprintf("%.1f", r.Score))
			_, _ = fmt.Fprintf(w.out, "%s  %s\n", score, w.styles.Path.Render(r.Path))
		}
		_, _ = fmt.Fprintln(w.out, w.styles.Dim.Render(fmt.Sprintf("%d result(s)", len(results))))
		return nil

	default:
		return ValidateFormat(format)
	}
}

// ValidateFormat rejects formats other than text and json.
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, "":
		return nil
	}
	return snaperrors.ValidationError(
		fmt.Sprintf("unknown output format %q (use text or json)", format), nil)
}
