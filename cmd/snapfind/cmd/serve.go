package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/index"
	"github.com/Aman-CERP/snapfind/internal/logging"
	"github.com/Aman-CERP/snapfind/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve the index over MCP (stdio)",
		Long: `Run a Model Context Protocol server on stdin/stdout for the index
of a directory (default ".").

Tools: search, index_status, reindex. Indexed documents are readable
as resources at snapfind://doc/<path>.

The index is built first if it is missing. With --watch the index is
rebuilt whenever files change. Logs go to ~/.snapfind/logs/, never
to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := loadProject(dirArg(args, 0), "")
			if err != nil {
				return err
			}

			// stdout carries JSON-RPC only.
			if !debugMode {
				cleanup, err := logging.SetupDefault(logging.ServerConfig(p.cfg.Server.LogLevel))
				if err != nil {
					return err
				}
				defer cleanup()
			}

			return runServe(ctx, p, watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Reindex when files change")

	return cmd
}

func runServe(ctx context.Context, p *project, watch bool) error {
	runner := index.NewRunner(nil)
	engine, rebuilt, err := index.LoadOrBuild(ctx, runner, p.runCfg)
	if err != nil {
		return err
	}
	if rebuilt {
		if err := engine.Save(p.runCfg.IndexPath); err != nil {
			slog.Warn("index_save_failed", slog.String("path", p.runCfg.IndexPath), snaperrors.LogAttr(err))
		}
	}

	srv, err := mcp.NewServer(engine, runner, p.runCfg, mcp.Options{
		CacheSize: p.cfg.Server.CacheSize,
		Watching:  watch,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return srv.Serve(gctx)
	})

	if watch {
		w, err := newWatcher(p)
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			return ignoreCanceled(w.Run(gctx))
		})
		g.Go(func() error {
			return ignoreCanceled(runner.Watch(gctx, p.runCfg, w, srv.ReplaceEngine))
		})
	}

	return g.Wait()
}
