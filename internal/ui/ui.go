// Package ui renders indexing progress and index status for the terminal.
//
// Two renderers exist: a styled one for interactive terminals and a plain
// line-oriented one for pipes, CI logs and --plain. NewRenderer picks
// between them from the output writer and the environment.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage is a phase of an index build.
type Stage int

const (
	StageCrawling Stage = iota
	StageIndexing
	StageSaving
	StageComplete
)

var stageNames = [...]struct{ name, tag string }{
	StageCrawling: {"Crawling", "CRAWL"},
	StageIndexing: {"Indexing", "INDEX"},
	StageSaving:   {"Saving", "SAVE"},
	StageComplete: {"Complete", "DONE"},
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "Unknown"
	}
	return stageNames[s].name
}

// Tag is the bracketed label used by the plain renderer.
func (s Stage) Tag() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "???"
	}
	return stageNames[s].tag
}

// ProgressEvent reports how far a build has come. Files counts documents
// handled so far; MaxFiles is the crawl bound (zero when unknown) and Dirs
// the directories visited.
type ProgressEvent struct {
	Stage       Stage
	Files       int
	MaxFiles    int
	Dirs        int
	CurrentFile string
	Message     string
}

func (e ProgressEvent) detail() string {
	if e.Message != "" {
		return e.Message
	}
	return e.CurrentFile
}

// ErrorEvent is a per-file failure. Warnings do not count as errors in the
// final summary.
type ErrorEvent struct {
	File   string
	Err    error
	IsWarn bool
}

// CompletionStats summarises a finished build.
type CompletionStats struct {
	Files     int
	Skipped   int
	Dirs      int
	Duration  time.Duration
	Errors    int
	Warnings  int
	IndexPath string
}

// Renderer receives build events. Implementations must be safe for
// concurrent use.
type Renderer interface {
	UpdateProgress(event ProgressEvent)
	AddError(event ErrorEvent)
	Complete(stats CompletionStats)
}

// Config selects and configures a renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	RootDir    string
}

// ConfigOption mutates a Config.
type ConfigOption func(*Config)

func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) { c.ForcePlain = force }
}

func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) { c.NoColor = noColor }
}

// WithRootDir names the indexed directory in the styled header.
func WithRootDir(dir string) ConfigOption {
	return func(c *Config) { c.RootDir = dir }
}

func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer returns the styled renderer only when writing to a terminal
// outside CI and plain output was not requested.
func NewRenderer(cfg Config) Renderer {
	switch {
	case cfg.ForcePlain, DetectCI(), !IsTTY(cfg.Output):
		return NewPlainRenderer(cfg)
	}
	cfg.NoColor = cfg.NoColor || DetectNoColor()
	return NewStyledRenderer(cfg)
}

// IsTTY reports whether w is a terminal file.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DetectNoColor honours the NO_COLOR convention (https://no-color.org).
func DetectNoColor() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS", "BUILDKITE"}

func DetectCI() bool {
	for _, name := range ciEnvVars {
		if _, set := os.LookupEnv(name); set {
			return true
		}
	}
	return false
}

// NopRenderer drops every event. The runner uses it when none is given.
type NopRenderer struct{}

func (NopRenderer) UpdateProgress(ProgressEvent) {}
func (NopRenderer) AddError(ErrorEvent)          {}
func (NopRenderer) Complete(CompletionStats)     {}
