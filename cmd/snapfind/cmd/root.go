// Package cmd provides the CLI commands for SnapFind.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/logging"
	"github.com/Aman-CERP/snapfind/internal/profiling"
	"github.com/Aman-CERP/snapfind/pkg/version"
)

// Profiling flags
var (
	profileOpts profiling.Options
	profiler    *profiling.Session
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the snapfind CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapfind",
		Short: "Bounded local file search",
		Long: `SnapFind indexes the text files under a directory into a single
compact index file and searches it by whole-word terms and filename
patterns.

Every resource is bounded: directory depth, file count, file size,
document count and query size all have fixed limits.`,
		Version:       version.Get().Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetVersionTemplate("snapfind version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&profileOpts.CPUPath, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.HeapPath, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.snapfind/logs/")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging starts profiling if requested and enables
// file logging for --debug. Without --debug only warnings reach stderr.
func startProfilingAndLogging(cmd *cobra.Command, _ []string) error {
	if profileOpts.Enabled() {
		session, err := profiling.Start(profileOpts)
		if err != nil {
			return err
		}
		profiler = session
	}

	if !debugMode {
		logging.Console(cmd.ErrOrStderr())
		return nil
	}

	cleanup, err := logging.SetupDefault(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.Info("debug_logging_enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Get().Version),
		slog.String("command", cmd.Name()))
	return nil
}

func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	var err error
	if profiler != nil {
		err = profiler.Stop()
		profiler = nil
	}
	if loggingCleanup != nil {
		slog.Info("debug_logging_stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return err
}

// Execute runs the root command and prints any error for the terminal.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		_ = stopProfilingAndLogging(root, nil)
		_, _ = fmt.Fprint(os.Stderr, snaperrors.FormatForCLI(err, debugMode))
	}
	return err
}
