// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/aura-tui/internal/ui/components"
	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

func (a *App) newAnalyticsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "analytics",
		Aliases: []string{"stats"},
		Short:   "Show the usage summary",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.newClient().Analytics(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "analytics")
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return NewJSONResponse("analytics", stats).Write(out)
			}
			theme := styles.NewThemeWithMode(styles.ParseMode(a.cfg.UI.Theme))
			fmt.Fprintln(out, components.RenderAnalytics(theme, stats, analyticsWidth(terminalWidth(out, defaultWidth)), ""))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// analyticsWidth caps the dashboard at a readable width.
func analyticsWidth(term int) int {
	if term > 60 {
		return 60
	}
	return term
}
