package cmd

import (
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/logging"
	"github.com/Aman-CERP/snapfind/internal/ui"
)

func newLogsCmd() *cobra.Command {
	var (
		lines   int
		level   string
		pattern string
		file    string
		pid     int
		follow  bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View SnapFind logs",
		Long: `Print recent entries from the SnapFind log file
(~/.snapfind/logs/snapfind.log unless --file is given).

Logs are written by 'snapfind serve' and by any command run with --debug.
Rotated files (snapfind.log.1, ...) are read when the live file is short,
and --follow keeps going across a rotation.`,
		Example: `  snapfind logs -n 100
  snapfind logs --level warn --follow
  snapfind logs --grep reindex
  snapfind logs --pid 4242`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := logging.FindLogFile(file)
			if err != nil {
				return err
			}

			cfg := logging.ViewerConfig{
				Level:   level,
				PID:     pid,
				NoColor: noColor || ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout()),
			}
			if pattern != "" {
				re, err := regexp.Compile(pattern)
				if err != nil {
					return snaperrors.ValidationError("invalid --grep pattern", err)
				}
				cfg.Pattern = re
			}
			viewer := logging.NewViewer(cfg, cmd.OutOrStdout())

			entries, err := viewer.Tail(path, lines)
			if err != nil {
				return err
			}
			viewer.Print(entries)

			if !follow {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ch := make(chan logging.LogEntry, 16)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer close(ch)
				return viewer.Follow(gctx, path, ch)
			})
			g.Go(func() error {
				for e := range ch {
					viewer.Print([]logging.LogEntry{e})
				}
				return nil
			})
			return g.Wait()
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&pattern, "grep", "", "Only show lines matching this regular expression")
	cmd.Flags().StringVar(&file, "file", "", "Log file to read")
	cmd.Flags().IntVar(&pid, "pid", 0, "Only show entries from this process id")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
