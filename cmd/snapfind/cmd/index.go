package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/snapfind/internal/index"
	"github.com/Aman-CERP/snapfind/internal/output"
	"github.com/Aman-CERP/snapfind/internal/search"
	"github.com/Aman-CERP/snapfind/internal/ui"
	"github.com/Aman-CERP/snapfind/internal/watcher"
)

func newIndexCmd() *cobra.Command {
	var (
		profile string
		plain   bool
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Index a directory for searching",
		Long: `Index the text files under a directory into a single index file
(.snapfind_index by default) in that directory.

Binary files are skipped. Text files larger than the content limit are
skipped with a warning unless index.skip_oversized is false.

Use --profile free for the constrained limits and --watch to keep the
index up to date as files change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := loadProject(dirArg(args, 0), profile)
			if err != nil {
				return err
			}

			renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(),
				ui.WithForcePlain(plain),
				ui.WithRootDir(p.root)))
			runner := index.NewRunner(renderer)

			if _, err := runner.Run(ctx, p.runCfg); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchAndReindex(ctx, p, output.New(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Limits profile: default or free (overrides config)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain text progress output")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and reindex when files change")

	return cmd
}

// watchAndReindex rebuilds the index for every debounced change until
// ctx is cancelled.
func watchAndReindex(ctx context.Context, p *project, out *output.Writer) error {
	w, err := newWatcher(p)
	if err != nil {
		return err
	}

	out.Statusf("", "Watching %s for changes (Ctrl+C to stop)", p.root)

	runner := index.NewRunner(nil)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCanceled(w.Run(gctx))
	})
	g.Go(func() error {
		return ignoreCanceled(runner.Watch(gctx, p.runCfg, w, func(engine *search.Engine, result *index.RunnerResult, err error) {
			if err != nil {
				out.Warningf("Reindex failed: %v", err)
				return
			}
			out.Successf("Reindexed %d files in %s", result.Files, result.Duration.Round(time.Millisecond))
			slog.Debug("watch_reindexed", slog.Int("documents", engine.Len()))
		}))
	})
	return g.Wait()
}

func newWatcher(p *project) (*watcher.Watcher, error) {
	return watcher.New(p.root, watcher.Options{
		Quiet:       p.cfg.DebounceDuration(),
		MaxDepth:    p.limits.MaxDepth,
		IgnoreNames: []string{p.cfg.Index.FileName},
	})
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
