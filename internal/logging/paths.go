package logging

import (
	"os"
	"path/filepath"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
)

// LogDirEnv overrides the log directory.
const LogDirEnv = "SNAPFIND_LOG_DIR"

// DefaultLogDir is $SNAPFIND_LOG_DIR, else ~/.snapfind/logs, else a
// directory under the system temp dir when there is no home.
func DefaultLogDir() string {
	if dir := os.Getenv(LogDirEnv); dir != "" {
		return dir
	}
	base := os.TempDir()
	if home, err := os.UserHomeDir(); err == nil {
		base = home
	}
	return filepath.Join(base, ".snapfind", "logs")
}

func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "snapfind.log")
}

// FindLogFile resolves the file 'snapfind logs' reads: explicit when
// given, the default log otherwise. The file must exist.
func FindLogFile(explicit string) (string, error) {
	path, msg := explicit, "log file not found"
	if path == "" {
		path, msg = DefaultLogPath(), "no log file found"
	}
	if _, err := os.Stat(path); err != nil {
		se := snaperrors.New(snaperrors.ErrCodeNotFound, msg, err).WithDetail("path", path)
		if explicit == "" {
			se = se.WithSuggestion("Run a command with --debug to generate logs: snapfind --debug index .")
		}
		return "", se
	}
	return path, nil
}
