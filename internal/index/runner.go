// Package index drives SnapFind indexing: it crawls a directory,
// classifies each file, feeds text files to a search engine, and
// persists the result.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Aman-CERP/snapfind/internal/crawler"
	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/limits"
	"github.com/Aman-CERP/snapfind/internal/search"
	"github.com/Aman-CERP/snapfind/internal/textdetect"
	"github.com/Aman-CERP/snapfind/internal/ui"
)

// DefaultProgressInterval is how many files pass between progress events.
const DefaultProgressInterval = 100

// RunnerConfig configures an indexing run.
type RunnerConfig struct {
	// RootDir is the directory to index.
	RootDir string

	// IndexPath is where the index is saved (defaults to RootDir/.snapfind_index).
	IndexPath string

	// Limits bounds the crawl and the engine.
	Limits limits.Limits

	// SkipOversized skips text files larger than Limits.MaxContentLength
	// instead of aborting the run.
	SkipOversized bool

	// ProgressInterval is the number of files between progress events
	// (0 = DefaultProgressInterval).
	ProgressInterval int
}

// IndexPathFor returns the index location for root using fileName.
func IndexPathFor(root, fileName string) string {
	if fileName == "" {
		fileName = search.DefaultIndexFile
	}
	return filepath.Join(root, fileName)
}

func (c RunnerConfig) indexPath() string {
	if c.IndexPath != "" {
		return c.IndexPath
	}
	return IndexPathFor(c.RootDir, "")
}

// RunnerResult contains the outcome of an indexing operation.
type RunnerResult struct {
	// Files is the number of files added to the index.
	Files int

	// Skipped counts files classified as non-text.
	Skipped int

	// Oversized counts text files skipped for exceeding MaxContentLength.
	Oversized int

	// Errors counts files that could not be read.
	Errors int

	// Dirs is the number of directories visited.
	Dirs int

	// Duration is the total indexing time.
	Duration time.Duration

	// IndexPath is where the index was saved; empty if nothing was saved.
	IndexPath string
}

// Runner executes indexing operations with progress reporting. Builds
// are serialized, so one Runner may be shared by the watch loop and the
// MCP reindex tool.
type Runner struct {
	renderer ui.Renderer
	readFile func(string) ([]byte, error)

	mu       sync.Mutex // guards detector and serializes build+save
	detector *textdetect.Detector
}

// NewRunner creates a Runner reporting to renderer (nil discards progress).
func NewRunner(renderer ui.Renderer) *Runner {
	if renderer == nil {
		renderer = ui.NopRenderer{}
	}
	return &Runner{
		renderer: renderer,
		detector: textdetect.NewDetector(),
		readFile: os.ReadFile,
	}
}

// Build crawls cfg.RootDir into a new in-memory engine.
//
// Unreadable files are reported and skipped. Non-text files are
// skipped. Any crawl error or engine limit aborts the build.
func (r *Runner) Build(ctx context.Context, cfg RunnerConfig) (*search.Engine, *RunnerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.build(ctx, cfg)
}

func (r *Runner) build(ctx context.Context, cfg RunnerConfig) (*search.Engine, *RunnerResult, error) {
	start := time.Now()
	result := &RunnerResult{}
	interval := cfg.ProgressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	root := filepath.Clean(cfg.RootDir)
	indexPath := filepath.Clean(cfg.indexPath())
	reserved := map[string]bool{
		indexPath:                     true,
		search.LockPath(indexPath):    true,
		indexPath + search.TempSuffix: true,
	}

	if err := ValidateRoot(root); err != nil {
		return nil, nil, err
	}
	c, err := crawler.New(root, cfg.Limits, crawler.WithSkip(func(p string) bool { return reserved[p] }))
	if err != nil {
		return nil, nil, err
	}
	engine := search.NewEngine(cfg.Limits)

	slog.Info("index_started",
		slog.String("root", root),
		slog.Int("max_files", cfg.Limits.MaxFiles),
		slog.Int("max_documents", cfg.Limits.MaxDocuments))

	r.renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageCrawling, Message: root})

	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		batch, ok, err := c.Next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}

		for _, path := range batch {
			if err := r.indexFile(engine, root, path, cfg, result); err != nil {
				return nil, nil, err
			}
			processed++
			if processed%interval == 0 {
				r.renderer.UpdateProgress(ui.ProgressEvent{
					Stage:       ui.StageIndexing,
					Files:       processed,
					MaxFiles:    cfg.Limits.MaxFiles,
					Dirs:        c.Progress().DirsSeen,
					CurrentFile: path,
				})
			}
		}
	}

	result.Dirs = c.Progress().DirsSeen
	result.Duration = time.Since(start)
	return engine, result, nil
}

// indexFile reads, classifies, and stores one file.
func (r *Runner) indexFile(engine *search.Engine, root, path string, cfg RunnerConfig, result *RunnerResult) error {
	content, err := r.readFile(path)
	if err != nil {
		result.Errors++
		r.renderer.AddError(ui.ErrorEvent{File: path, Err: err})
		slog.Warn("file_read_failed", slog.String("path", path), snaperrors.LogAttr(err))
		return nil
	}

	verdict := r.detector.Validate(content)
	if !verdict.IsText() {
		result.Skipped++
		slog.Debug("file_skipped",
			slog.String("path", path),
			slog.Int("confidence", verdict.Confidence))
		return nil
	}

	docPath := documentPath(root, path)
	if err := engine.AddDocument(docPath, content); err != nil {
		if errors.Is(err, snaperrors.ErrContentTooLarge) && cfg.SkipOversized {
			result.Oversized++
			r.renderer.AddError(ui.ErrorEvent{File: path, Err: err, IsWarn: true})
			slog.Debug("file_oversized", slog.String("path", path), slog.Int("size", len(content)))
			return nil
		}
		return err
	}

	result.Files++
	slog.Debug("file_indexed",
		slog.String("path", docPath),
		slog.String("category", verdict.Category.String()),
		slog.Int("confidence", verdict.Confidence))
	return nil
}

// ValidateRoot checks that dir exists and is a directory.
// The crawler treats a vanished directory as a broken invariant, so
// this runs before every crawl.
func ValidateRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return snaperrors.New(snaperrors.ErrCodeNotFound, "directory not found", err).
				WithDetail("path", dir)
		}
		return snaperrors.IOError("failed to stat directory", err).WithDetail("path", dir)
	}
	if !info.IsDir() {
		return snaperrors.New(snaperrors.ErrCodeNotADirectory, "not a directory", nil).
			WithDetail("path", dir)
	}
	return nil
}

// documentPath is path relative to root, slash-separated.
func documentPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Run builds the index and saves it. A directory with no text files
// saves nothing; a directory where every candidate failed to read is
// an error.
func (r *Runner) Run(ctx context.Context, cfg RunnerConfig) (*RunnerResult, error) {
	_, result, err := r.Reindex(ctx, cfg)
	return result, err
}

// Reindex is Run that also returns the freshly built engine, so a
// long-running caller can swap it in without reloading from disk.
func (r *Runner) Reindex(ctx context.Context, cfg RunnerConfig) (*search.Engine, *RunnerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	engine, result, err := r.build(ctx, cfg)
	if err != nil {
		slog.Error("index_failed", slog.String("root", cfg.RootDir), snaperrors.LogAttr(err))
		return nil, nil, err
	}

	if result.Files == 0 {
		if result.Errors > 0 {
			return nil, result, snaperrors.New(snaperrors.ErrCodeIndexFailed,
				fmt.Sprintf("failed to index any files (%d read errors)", result.Errors), nil)
		}
		r.renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageComplete, Message: "no text files found"})
		r.complete(result)
		return engine, result, nil
	}

	indexPath := cfg.indexPath()
	r.renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageSaving, Message: indexPath})
	if err := engine.Save(indexPath); err != nil {
		return nil, nil, err
	}
	result.IndexPath = indexPath

	slog.Info("index_complete",
		slog.String("root", cfg.RootDir),
		slog.Int("files", result.Files),
		slog.Int("skipped", result.Skipped),
		slog.Int("oversized", result.Oversized),
		slog.Int("errors", result.Errors),
		slog.Duration("duration", result.Duration))

	r.complete(result)
	return engine, result, nil
}

func (r *Runner) complete(result *RunnerResult) {
	r.renderer.Complete(ui.CompletionStats{
		Files:     result.Files,
		Skipped:   result.Skipped + result.Oversized,
		Dirs:      result.Dirs,
		Duration:  result.Duration,
		Errors:    result.Errors,
		Warnings:  result.Oversized,
		IndexPath: result.IndexPath,
	})
}

// LoadOrBuild returns the persisted index for cfg, or, when it is
// missing or unreadable, an engine rebuilt in memory by re-crawling.
// rebuilt reports which path was taken. A rebuilt engine is not saved.
func LoadOrBuild(ctx context.Context, r *Runner, cfg RunnerConfig) (engine *search.Engine, rebuilt bool, err error) {
	indexPath := cfg.indexPath()
	engine, loadErr := search.Load(indexPath, cfg.Limits)
	if loadErr == nil {
		slog.Debug("index_loaded", slog.String("path", indexPath), slog.Int("documents", engine.Len()))
		return engine, false, nil
	}

	slog.Warn("index_load_failed_rebuilding",
		slog.String("path", indexPath),
		snaperrors.LogAttr(loadErr))

	engine, _, err = r.Build(ctx, cfg)
	if err != nil {
		return nil, true, err
	}
	return engine, true, nil
}
