package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// IndexState is the condition of a directory's index file.
type IndexState string

const (
	StateReady   IndexState = "ready"
	StateMissing IndexState = "missing"
	StateError   IndexState = "error"
)

// StatusInfo is what `snapfind status` reports for one directory.
type StatusInfo struct {
	RootDir     string     `json:"root_dir"`
	IndexPath   string     `json:"index_path"`
	State       IndexState `json:"state"`
	Error       string     `json:"error,omitempty"`
	Documents   int        `json:"documents"`
	IndexSize   int64      `json:"index_size"`
	LastIndexed time.Time  `json:"last_indexed,omitzero"`

	Profile      string `json:"profile"`
	MaxDocuments int    `json:"max_documents"`
	MaxFiles     int    `json:"max_files"`
	MaxDepth     int    `json:"max_depth"`
}

// StatusRenderer prints a StatusInfo as aligned text or JSON.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{out: out, styles: GetStyles(noColor)}
}

type statusRow struct{ label, value string }

func (r *StatusRenderer) rows(info StatusInfo) []statusRow {
	rows := []statusRow{
		{"Status", r.stateLabel(info.State)},
		{"Index file", info.IndexPath},
	}
	if info.State == StateReady {
		rows = append(rows,
			statusRow{"Documents", fmt.Sprintf("%d / %d", info.Documents, info.MaxDocuments)},
			statusRow{"Size", FormatBytes(info.IndexSize)})
		if !info.LastIndexed.IsZero() {
			rows = append(rows, statusRow{"Last indexed", Age(info.LastIndexed, time.Now())})
		}
	}
	if info.Error != "" {
		rows = append(rows, statusRow{"Error", r.styles.Error.Render(info.Error)})
	}
	return append(rows,
		statusRow{"Profile", info.Profile},
		statusRow{"Crawl limits", fmt.Sprintf("%d files, depth %d", info.MaxFiles, info.MaxDepth)})
}

// Render writes the human-readable report.
func (r *StatusRenderer) Render(info StatusInfo) error {
	if _, err := fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Index Status: "+info.RootDir)); err != nil {
		return err
	}
	for _, row := range r.rows(info) {
		if _, err := fmt.Fprintf(r.out, "  %-13s %s\n", row.label+":", row.value); err != nil {
			return err
		}
	}
	return nil
}

func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

func (r *StatusRenderer) stateLabel(s IndexState) string {
	switch s {
	case StateReady:
		return r.styles.Success.Render(string(s))
	case StateMissing:
		return r.styles.Warning.Render(string(s))
	case StateError:
		return r.styles.Error.Render(string(s))
	}
	return string(s)
}

// Age describes t relative to now in the largest whole unit, falling back
// to a date after a week.
func Age(t, now time.Time) string {
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}
	units := []struct {
		name string
		size time.Duration
		upTo time.Duration
	}{
		{"minute", time.Minute, time.Hour},
		{"hour", time.Hour, 24 * time.Hour},
		{"day", 24 * time.Hour, 7 * 24 * time.Hour},
	}
	for _, u := range units {
		if d >= u.upTo {
			continue
		}
		n := int(d / u.size)
		if n == 1 {
			return "1 " + u.name + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, u.name)
	}
	return t.Format("2006-01-02 15:04")
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMG"[exp])
}
