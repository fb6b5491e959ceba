package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/snapfind/internal/config"
	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/index"
	"github.com/Aman-CERP/snapfind/internal/limits"
)

// project is a resolved directory plus the settings that apply to it.
type project struct {
	root   string
	cfg    *config.Config
	limits limits.Limits
	runCfg index.RunnerConfig
}

// dirArg returns args[i], or "." when absent.
func dirArg(args []string, i int) string {
	if len(args) > i && args[i] != "" {
		return args[i]
	}
	return "."
}

// resolveDir makes dir absolute and checks that it is a directory.
func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", snaperrors.IOError("failed to resolve path", err).WithDetail("path", dir)
	}
	if err := index.ValidateRoot(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// loadProject resolves dir and loads its configuration. A non-empty
// profile overrides the configured one.
func loadProject(dir, profile string) (*project, error) {
	root, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if profile != "" {
		cfg.Profile = profile
	}

	l, err := cfg.ResolveLimits()
	if err != nil {
		return nil, err
	}

	return &project{
		root:   root,
		cfg:    cfg,
		limits: l,
		runCfg: index.RunnerConfig{
			RootDir:       root,
			IndexPath:     index.IndexPathFor(root, cfg.Index.FileName),
			Limits:        l,
			SkipOversized: cfg.Index.SkipOversized,
		},
	}, nil
}

// validateQuery rejects blank queries before they reach the engine.
func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return snaperrors.New(snaperrors.ErrCodeQueryEmpty, "search query is empty", nil)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
