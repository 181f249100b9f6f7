// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Inspect and edit the configuration file.
//
// Command: config [subcommand]
//
// Subcommands:
//   show                 Print the effective configuration (default)
//   path                 Print the config file path
//   init [--force]       Write the default configuration
//   get KEY              Print one value, e.g. "ui.theme"
//   set KEY VALUE        Change one value in the config file

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/aura-tui/internal/config"
	"github.com/jeranaias/aura-tui/internal/logging"
)

func (a *App) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the configuration file",
		Args:  cobra.NoArgs,
		// An invalid file must not lock the user out of fixing it.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lipgloss.SetColorProfile(colorProfile(cmd.OutOrStdout()))
			closer, err := logging.Init(logging.Options{Level: "warn", Console: cmd.ErrOrStderr()})
			a.closer = closer
			return err
		},
		RunE: a.runConfigShow,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.configFile()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), false, "").success("Wrote %s", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE:  a.runConfigShow,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := a.configFile()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		initCmd,
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print one value",
			Long:  "Print one value.\n\nKeys:\n  " + strings.Join(config.Keys(), "\n  "),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := a.loadConfig()
				if err != nil {
					return err
				}
				v, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change one value in the config file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := a.configFile()
				if err != nil {
					return err
				}
				// Environment overrides are not written back.
				cfg := config.Default()
				if _, statErr := os.Stat(path); statErr == nil {
					if err := config.LoadTOML(cfg, path); err != nil {
						return err
					}
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := cfg.Validate(); err != nil {
					return errors.Wrap(err, "invalid value")
				}
				if err := config.SaveTOML(cfg, path); err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout(), false, "").success("%s = %s", args[0], args[1])
				return nil
			},
		},
	)
	return cmd
}

func (a *App) runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), cfg.String())
	return nil
}
