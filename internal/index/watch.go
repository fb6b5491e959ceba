package index

import (
	"context"
	"log/slog"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/search"
	"github.com/Aman-CERP/snapfind/internal/watcher"
)

// ChangeSource delivers batches of file changes. *watcher.Watcher
// satisfies it.
type ChangeSource interface {
	Batches() <-chan []watcher.Change
	Errors() <-chan error
}

// OnReindex is called after each rebuild triggered by Watch. engine is
// nil when err is non-nil.
type OnReindex func(engine *search.Engine, result *RunnerResult, err error)

// Watch rebuilds and saves the index for every batch from src until ctx
// is cancelled or src closes. Rebuild failures are reported to onReindex
// and do not stop the loop; the previous index stays on disk.
func (r *Runner) Watch(ctx context.Context, cfg RunnerConfig, src ChangeSource, onReindex OnReindex) error {
	batches, errs := src.Batches(), src.Errors()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("watcher_error", snaperrors.LogAttr(err))

		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			slog.Info("changes_detected",
				slog.Int("changes", len(batch)),
				slog.String("first", firstPath(batch)),
				slog.Bool("config_changed", configChanged(batch)))

			engine, result, err := r.Reindex(ctx, cfg)
			if onReindex != nil {
				onReindex(engine, result, err)
			}
		}
	}
}

func firstPath(batch []watcher.Change) string {
	if len(batch) == 0 {
		return ""
	}
	return batch[0].Path
}

func configChanged(batch []watcher.Change) bool {
	for _, c := range batch {
		if c.Op == watcher.ConfigChanged {
			return true
		}
	}
	return false
}
