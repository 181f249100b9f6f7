// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/aura-tui/internal/config"
	"github.com/jeranaias/aura-tui/internal/controller"
	"github.com/jeranaias/aura-tui/internal/ui/chat"
)

// =============================================================================
// TERMINAL UI
// =============================================================================

// runTUI opens the full-screen chat interface.
func (a *App) runTUI(cmd *cobra.Command, _ []string) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errors.New("the chat interface needs a terminal; use 'aura chat' or 'aura ask' instead")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	bridge := chat.NewBridge()
	var confirm controller.Confirmer = bridge
	if !a.cfg.Chat.ConfirmDelete {
		confirm = autoConfirm
	}
	ctrl := a.newController(confirm)

	opts := chat.OptionsFromConfig(a.cfg)
	opts.Logger = log.Logger
	p := tea.NewProgram(chat.New(ctx, ctrl, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	bridge.Attach(p.Send)
	defer bridge.Watch(ctrl.Session(), ctrl.Directory())()

	if path, err := a.configFile(); err == nil {
		go a.watchConfig(ctx, path, bridge)
	}

	_, err := p.Run()
	ctrl.Wait()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// watchConfig reloads appearance settings while the UI runs.
func (a *App) watchConfig(ctx context.Context, path string, bridge *chat.Bridge) {
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err == nil {
			log.Info().Str("path", path).Msg("config reloaded")
		}
		bridge.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		log.Debug().Err(err).Msg("config watch disabled")
	}
}

// autoConfirm approves every prompt; used when confirm_delete is off.
var autoConfirm = controller.ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})
