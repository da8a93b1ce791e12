// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/askterm/internal/config"
	"github.com/jeranaias/askterm/internal/util"
)

// secretKeys are masked by config get.
var secretKeys = map[string]bool{
	"transport.token": true,
}

func newConfigCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Long: `View and modify the askterm configuration.

The config file is ~/.askterm/config.toml unless --config is given; YAML
and JSON files are read by extension. ASKTERM_* environment variables and
a .env file in the working directory override the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showConfig(cmd, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "output format: toml, yaml or json")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (token masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showConfig(cmd, format)
		},
	}
	show.Flags().StringVar(&format, "format", "toml", "output format: toml, yaml or json")

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(
		show,
		&cobra.Command{
			Use:         "path",
			Short:       "Print the config file path",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{annotationNoSetup: "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := a.configFilePath()
				if err != nil {
					return err
				}
				suffix := ""
				if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
					suffix = " " + DimStyle.Render("(not created; run askterm config init)")
				}
				fmt.Fprintln(cmd.OutOrStdout(), path+suffix)
				return nil
			},
		},
		initCmd,
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print one setting, e.g. ui.theme",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.getConfig(cmd, args[0])
			},
		},
		&cobra.Command{
			Use:         "set KEY VALUE",
			Short:       "Change one setting in the config file",
			Args:        cobra.ExactArgs(2),
			Annotations: map[string]string{annotationNoSetup: "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.setConfig(cmd, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:         "keys",
			Short:       "List every setting",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{annotationNoSetup: "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, k := range config.Keys() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			},
		},
	)
	return cmd
}

// configFilePath is the file config commands read and write: --config, the
// first existing file in the config directory, or the default TOML path.
func (a *app) configFilePath() (string, error) {
	if a.opts.configPath != "" {
		return util.ExpandHome(a.opts.configPath), nil
	}
	path, err := config.FindConfigFile()
	if err != nil {
		return "", err
	}
	if path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func (a *app) showConfig(cmd *cobra.Command, format string) error {
	ext := "." + strings.ToLower(strings.TrimPrefix(format, "."))
	switch ext {
	case ".toml", ".yaml", ".yml", ".json":
	default:
		return NewUsageError("--format must be toml, yaml or json, got %q", format)
	}

	data, err := config.Encode(a.cfg.Redacted(), ext)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func (a *app) initConfig(cmd *cobra.Command, force bool) error {
	path, err := a.configFilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return NewUsageError("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

func (a *app) getConfig(cmd *cobra.Command, key string) error {
	v, err := a.cfg.Get(key)
	if err != nil {
		return NewUsageError("%v", err)
	}
	if secretKeys[key] {
		v = util.RedactSecret(fmt.Sprint(v))
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

// setConfig edits the file itself: environment overrides never leak into
// it, and the result must validate before it is written.
func (a *app) setConfig(cmd *cobra.Command, key, value string) error {
	path, err := a.configFilePath()
	if err != nil {
		return err
	}

	cfg, err := config.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return NewUsageError("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	shown := value
	if secretKeys[key] {
		shown = util.RedactSecret(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", SuccessStyle.Render("[OK]"), key, shown)
	return nil
}
