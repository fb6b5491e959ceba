package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/snapfind/configs"
	"github.com/Aman-CERP/snapfind/internal/config"
	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage SnapFind configuration",
		Long: `Manage SnapFind configuration.

Settings are layered: built-in defaults, then the user config
(~/.config/snapfind/config.yaml), then .snapfind.yaml in the indexed
directory, then SNAPFIND_* environment variables.`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force     bool
		user      bool
		effective bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration file",
		Long: `Write the default configuration to .snapfind.yaml in a directory,
or to the user config with --user.

The file is a commented template. With --effective it is instead the
configuration currently in effect, written out in full.

An existing file is kept unless --force is given; with --force it is
backed up first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())

			path, template := config.GetUserConfigPath(), configs.UserConfigTemplate
			dir := "."
			if !user {
				root, err := resolveDir(dirArg(args, 0))
				if err != nil {
					return err
				}
				dir = root
				path, template = config.ProjectConfigPath(root), configs.ProjectConfigTemplate
			}

			// Resolve before any backup so a broken config is reported, not rotated.
			var current *config.Config
			if effective {
				cfg, err := config.Load(dir)
				if err != nil {
					return err
				}
				current = cfg
			}

			if fileExists(path) {
				if !force {
					return snaperrors.New(snaperrors.ErrCodeConfigInvalid,
						fmt.Sprintf("config already exists: %s", path), nil).
						WithSuggestion("Use --force to overwrite (a backup is kept)")
				}
				backup, err := config.BackupFile(path)
				if err != nil {
					return err
				}
				out.Statusf("", "Backed up existing config to %s", backup)
			}

			if current != nil {
				if err := current.WriteYAML(path); err != nil {
					return err
				}
			} else if err := writeTemplate(path, template); err != nil {
				return err
			}
			out.Successf("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config (after backing it up)")
	cmd.Flags().BoolVar(&user, "user", false, "Write the user config instead of the project config")
	cmd.Flags().BoolVar(&effective, "effective", false, "Write the configuration currently in effect instead of the template")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [dir]",
		Short: "Print the effective configuration for a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(dirArg(args, 0), "")
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(p.cfg); err != nil {
				return snaperrors.IOError("failed to print config", err)
			}
			return enc.Close()
		},
	}
}

func writeTemplate(path, template string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return snaperrors.IOError("failed to create config directory", err).WithDetail("path", path)
	}
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return snaperrors.IOError("failed to write config file", err).WithDetail("path", path)
	}
	return nil
}
