// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/aura-tui/internal/api"
	"github.com/jeranaias/aura-tui/internal/config"
	"github.com/jeranaias/aura-tui/internal/controller"
	"github.com/jeranaias/aura-tui/internal/directory"
	"github.com/jeranaias/aura-tui/internal/logging"
	"github.com/jeranaias/aura-tui/internal/session"
)

// =============================================================================
// APPLICATION
// =============================================================================

// App holds state shared by every command of one invocation.
type App struct {
	Version string

	// Global flags
	configPath string
	baseURL    string
	logLevel   string
	logFile    string

	cfg    *config.Config
	closer io.Closer
}

// NewRootCommand builds the aura command tree.
func NewRootCommand(version string) *cobra.Command {
	app := &App{Version: version}

	root := &cobra.Command{
		Use:   "aura",
		Short: "Terminal client for the Aura conversation service",
		Long: `aura talks to an Aura conversation service.

Without a subcommand it opens the full-screen chat interface.`,
		Version:            version,
		Args:               cobra.NoArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  app.setup,
		PersistentPostRunE: app.teardown,
		RunE:               app.runTUI,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.configPath, "config", "", "config file (default ~/.aura/config.toml)")
	pf.StringVar(&app.baseURL, "base-url", "", "conversation service URL")
	pf.StringVar(&app.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&app.logFile, "log-file", "", "log file path")

	root.AddCommand(
		app.newChatCommand(),
		app.newAskCommand(),
		app.newListCommand(),
		app.newShowCommand(),
		app.newDeleteCommand(),
		app.newExportCommand(),
		app.newAnalyticsCommand(),
		app.newServeCommand(),
		app.newConfigCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	root := NewRootCommand(version)
	if err := root.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:")+" "+err.Error())
		return 1
	}
	return 0
}

// exitError ends the process with code after output was already written.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads configuration and installs the global logger.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	lipgloss.SetColorProfile(colorProfile(cmd.OutOrStdout()))

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	return a.initLogging(cmd)
}

// initLogging logs to the rotating file only while the full-screen UI owns
// the terminal, and to stderr for every other command.
func (a *App) initLogging(cmd *cobra.Command) error {
	opts := logging.Options{
		Level:      a.cfg.Log.Level,
		Format:     a.cfg.Log.Format,
		File:       a.cfg.Log.File,
		MaxSizeMB:  a.cfg.Log.MaxSizeMB,
		MaxBackups: a.cfg.Log.MaxBackups,
		MaxAgeDays: a.cfg.Log.MaxAgeDays,
	}

	if cmd == cmd.Root() {
		if opts.File == "" {
			opts.File = config.DefaultLogFile()
		}
	} else {
		opts.Console = cmd.ErrOrStderr()
		quiet := cmd.Name() != "serve" && !cmd.Flags().Changed("log-level")
		if quiet && (opts.Level == "" || opts.Level == "info") {
			opts.Level = "warn"
		}
	}

	closer, err := logging.Init(opts)
	if err != nil {
		return errors.Wrap(err, "init logging")
	}
	a.closer = closer
	log.Debug().Str("command", cmd.CommandPath()).Str("base_url", a.cfg.Server.BaseURL).Msg("starting")
	return nil
}

func (a *App) teardown(_ *cobra.Command, _ []string) error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// loadConfig reads the config file and applies flag overrides on top of
// the file and environment.
func (a *App) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if a.baseURL != "" {
		cfg.Server.BaseURL = a.baseURL
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFile != "" {
		cfg.Log.File = a.logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// configFile returns the config file in use.
func (a *App) configFile() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.ConfigPath()
}

// =============================================================================
// WIRING
// =============================================================================

// newClient builds the service client from the [server] section.
func (a *App) newClient() *api.Client {
	s := a.cfg.Server
	return api.NewClient(s.BaseURL).
		WithTimeout(s.Timeout()).
		WithRateLimit(s.RequestsPerSecond, s.Burst).
		WithLogger(log.Logger).
		WithUserAgent("aura/" + a.Version)
}

// newController wires a fresh session and directory to the service.
func (a *App) newController(confirm controller.Confirmer) *controller.Controller {
	return controller.New(a.newClient(), session.New(), directory.New(),
		controller.WithConfirmer(confirm),
		controller.WithLogger(log.Logger),
	)
}
