package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects where records go and how much is kept.
type Config struct {
	Level     string // debug, info, warn or error
	FilePath  string
	MaxSizeMB int // rotate once the live file passes this size
	MaxFiles  int // rotated files kept beside the live one
	Stderr    bool
}

// DefaultConfig logs at info to the default file: 10 MB per file, five
// rotated files kept.
func DefaultConfig() Config {
	return Config{Level: "info", FilePath: DefaultLogPath(), MaxSizeMB: 10, MaxFiles: 5}
}

// DebugConfig is used for --debug.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// ServerConfig is used by `snapfind serve`. It never writes to stderr or
// stdout because stdout carries the MCP stream.
func ServerConfig(level string) Config {
	cfg := DefaultConfig()
	cfg.Level = level
	return cfg
}

// Setup opens the rotating log file and returns a JSON logger over it.
// Every record carries the process id so concurrent snapfind processes
// sharing one log file can be told apart. cleanup flushes and closes the
// file.
func Setup(cfg Config) (logger *slog.Logger, cleanup func(), err error) {
	file, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = file
	if cfg.Stderr {
		out = io.MultiWriter(file, os.Stderr)
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: LevelFromString(cfg.Level)})
	logger = slog.New(handler).With(slog.Int("pid", os.Getpid()))

	return logger, func() {
		_ = file.Sync()
		_ = file.Close()
	}, nil
}

// SetupDefault is Setup followed by slog.SetDefault.
func SetupDefault(cfg Config) (func(), error) {
	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	logger.Debug("logging_initialized", slog.String("log_file", cfg.FilePath), slog.String("level", cfg.Level))
	return cleanup, nil
}

// Console sends warnings and errors to w as text. Used by CLI commands
// when file logging is off.
func Console(w io.Writer) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn})))
}

func Discard() {
	slog.SetDefault(slog.New(slog.DiscardHandler))
}

// LevelFromString parses a level name case-insensitively. "warning" is
// accepted for warn; anything unrecognised means info.
func LevelFromString(name string) slog.Level {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
