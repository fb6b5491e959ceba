// Package configs embeds the configuration templates written by
// `snapfind config init`.
//
// Both templates follow the schema of internal/config and are loaded
// through the same layering: defaults, user config, project config,
// then SNAPFIND_* environment variables.
package configs

import _ "embed"

// UserConfigTemplate is written to ~/.config/snapfind/config.yaml by
// `snapfind config init --user`. It applies to every indexed directory.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written to .snapfind.yaml in the indexed
// directory by `snapfind config init`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
