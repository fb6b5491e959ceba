// Package config loads SnapFind configuration from defaults, the user
// config file, the project config file, and SNAPFIND_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/limits"
	"github.com/Aman-CERP/snapfind/internal/search"
)

// Project config file names, in lookup order.
const (
	ProjectConfigFile    = ".snapfind.yaml"
	ProjectConfigFileAlt = ".snapfind.yml"
)

// Config represents the complete SnapFind configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Profile string        `yaml:"profile" json:"profile"`
	Limits  limits.Limits `yaml:"limits" json:"limits"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Watch   WatchConfig   `yaml:"watch" json:"watch"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

// IndexConfig configures where and how the index is built.
type IndexConfig struct {
	// FileName is the index file name inside the indexed directory.
	FileName string `yaml:"file_name" json:"file_name"`

	// SkipOversized skips text files larger than max_content_length
	// instead of failing the whole run.
	SkipOversized bool `yaml:"skip_oversized" json:"skip_oversized"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	// Debounce is a Go duration string, e.g. "500ms".
	Debounce string `yaml:"debounce" json:"debounce"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// CacheSize is the number of query results kept in the LRU cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a new Config with sensible defaults.
// Limits stay zero: they are overrides on top of the profile.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Profile: limits.ProfileDefault,
		Index: IndexConfig{
			FileName:      search.DefaultIndexFile,
			SkipOversized: true,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Server: ServerConfig{
			CacheSize: 128,
			LogLevel:  "info",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/snapfind/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/snapfind/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "snapfind", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "snapfind", "config.yaml")
	}
	return filepath.Join(home, ".config", "snapfind", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the directory dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/snapfind/config.yaml)
//  3. Project config (.snapfind.yaml in dir)
//  4. Environment variables (SNAPFIND_*)
//
// Each file is decoded on top of the previous layer, so only the keys
// it sets take effect.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, err
		}
	}

	if projectPath := ProjectConfigPath(dir); projectPath != "" {
		if err := cfg.loadYAML(projectPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if none exists.
// .snapfind.yaml takes precedence over .snapfind.yml.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigFile, ProjectConfigFileAlt} {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// loadYAML decodes path onto c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return snaperrors.New(snaperrors.ErrCodeConfigNotFound,
			"failed to read config file", err).WithDetail("path", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return snaperrors.ConfigError("failed to parse config file", err).WithDetail("path", path)
	}
	return nil
}

// applyEnvOverrides applies SNAPFIND_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("SNAPFIND_PROFILE"); v != "" {
		c.Profile = v
	}
	if v := os.Getenv("SNAPFIND_INDEX_FILE"); v != "" {
		c.Index.FileName = v
	}
	if v := os.Getenv("SNAPFIND_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"SNAPFIND_MAX_FILES", &c.Limits.MaxFiles},
		{"SNAPFIND_MAX_DEPTH", &c.Limits.MaxDepth},
		{"SNAPFIND_MAX_DOCUMENTS", &c.Limits.MaxDocuments},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return snaperrors.ConfigError(
				fmt.Sprintf("%s must be a positive integer, got %q", e.name, v), err)
		}
		*e.dst = n
	}
	return nil
}

// ResolveLimits returns the profile limits with the configured overrides applied.
func (c *Config) ResolveLimits() (limits.Limits, error) {
	base, err := limits.Profile(c.Profile)
	if err != nil {
		return limits.Limits{}, err
	}
	l := base.Merge(c.Limits)
	if err := l.Validate(); err != nil {
		return limits.Limits{}, err
	}
	return l, nil
}

// DebounceDuration parses Watch.Debounce.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if _, err := c.ResolveLimits(); err != nil {
		return err
	}

	if c.Index.FileName == "" || strings.ContainsAny(c.Index.FileName, `/\`) {
		return snaperrors.ConfigError(
			fmt.Sprintf("index.file_name must be a plain file name, got %q", c.Index.FileName), nil)
	}

	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d <= 0 {
		return snaperrors.ConfigError(
			fmt.Sprintf("watch.debounce must be a positive duration, got %q", c.Watch.Debounce), err)
	}

	if c.Server.CacheSize <= 0 {
		return snaperrors.ConfigError(
			fmt.Sprintf("server.cache_size must be positive, got %d", c.Server.CacheSize), nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return snaperrors.ConfigError(
			fmt.Sprintf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel), nil)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file, creating parent
// directories as needed.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return snaperrors.InternalError("failed to marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return snaperrors.IOError("failed to create config directory", err).WithDetail("path", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return snaperrors.IOError("failed to write config file", err).WithDetail("path", path)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
