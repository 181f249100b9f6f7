// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/aura-tui/internal/config"
	"github.com/jeranaias/aura-tui/internal/server"
)

func (a *App) newServeCommand() *cobra.Command {
	var (
		addr     string
		database string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development conversation service",
		Long: `Run the development conversation service.

Conversations are stored in SQLite and replies come from a canned
responder, so the client can be tried without a model backend. Use
--database :memory: for a throwaway store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.cfg.Serve
			if cmd.Flags().Changed("addr") {
				s.Addr = addr
			}
			if cmd.Flags().Changed("database") {
				s.Database = database
			}
			if s.Database == "" {
				s.Database = config.DefaultDatabase()
			}

			store, err := server.OpenStore(s.Database)
			if err != nil {
				return errors.Wrapf(err, "open %s", s.Database)
			}
			defer store.Close()

			srv := server.New(store, server.Options{
				Addr:           s.Addr,
				RateLimit:      s.RateLimit,
				RateWindow:     time.Duration(s.RateWindowSecs) * time.Second,
				MaxUploadBytes: int64(s.MaxUploadMB) << 20,
				Logger:         log.Logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Str("database", s.Database).Msg("store opened")
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from [serve] addr)")
	cmd.Flags().StringVar(&database, "database", "", "SQLite path or :memory:")
	return cmd
}
