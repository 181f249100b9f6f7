// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/aura-tui/internal/directory"
	"github.com/jeranaias/aura-tui/internal/export"
	"github.com/jeranaias/aura-tui/internal/model"
)

// =============================================================================
// LIST
// =============================================================================

func (a *App) newListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List conversations, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl := a.newController(nil)
			if err := ctrl.RefreshDirectory(cmd.Context()); err != nil {
				return errors.Wrap(err, "list conversations")
			}
			items := ctrl.Directory().Items()
			if asJSON {
				if items == nil {
					items = []model.Summary{}
				}
				return NewJSONResponse("list", items).Write(cmd.OutOrStdout())
			}
			fmt.Fprint(cmd.OutOrStdout(), directory.FormatList(items, ""))
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// =============================================================================
// SHOW
// =============================================================================

func (a *App) newShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a conversation",
		Long: `Print a conversation.

With --format the transcript is written in that export format instead
of the terminal rendering.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			conv, err := a.newClient().GetConversation(cmd.Context(), id)
			if err != nil {
				return errors.Wrapf(err, "load conversation %s", id)
			}
			out := cmd.OutOrStdout()

			if format != "" {
				f, err := export.ParseFormat(format)
				if err != nil {
					return err
				}
				exporter, err := export.NewExporter(f, export.DefaultOptions())
				if err != nil {
					return err
				}
				data, err := exporter.Export(export.FromConversation(conv))
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			p := newPrinter(out, a.cfg.UI.Markdown, a.cfg.UI.Theme)
			s := conv.Settings()
			title := conv.Title
			if title == "" {
				title = model.DefaultTitle
			}
			fmt.Fprintln(out, titleStyle.Render(title)+" "+mutedStyle.Render("#"+conv.ID.String()))
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s, temp %.1f", s.Model.Label(), s.Temperature)))
			p.attachments(conv.Attachments)
			fmt.Fprintln(out)
			for _, m := range conv.Messages {
				p.message(m)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "print as markdown, json or html")
	return cmd
}

// =============================================================================
// DELETE
// =============================================================================

func (a *App) newDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl := a.newController(newConfirmer(confirmOptions{
				Yes:      yes,
				Required: a.cfg.Chat.ConfirmDelete,
				In:       cmd.InOrStdin(),
				Out:      cmd.ErrOrStderr(),
			}))
			defer ctrl.Wait()

			deleted, err := ctrl.DeleteConversation(cmd.Context(), id)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), false, "")
			if !deleted {
				p.notice("Cancelled.")
				return nil
			}
			p.success("Deleted conversation %s", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// =============================================================================
// EXPORT
// =============================================================================

func (a *App) newExportCommand() *cobra.Command {
	var (
		format string
		output string
		open   bool
		theme  string
	)

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Write a conversation transcript file",
		Long: `Write a conversation transcript file.

Formats: markdown (md), json, html. The file is named after the
conversation title and the current time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			opts := export.DefaultOptions()
			opts.OutputDir = output
			opts.OpenAfterExport = open
			if theme != "" {
				opts.Theme = theme
			}
			exporter, err := export.NewExporter(f, opts)
			if err != nil {
				return err
			}

			conv, err := a.newClient().GetConversation(cmd.Context(), id)
			if err != nil {
				return errors.Wrapf(err, "load conversation %s", id)
			}
			path, err := export.ExportToFile(export.FromConversation(conv), exporter, opts)
			if err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), false, "").success("Exported to %s", path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", string(export.FormatMarkdown), "markdown, json or html")
	f.StringVarP(&output, "output", "o", ".", "output directory")
	f.BoolVar(&open, "open", false, "open the file afterwards")
	f.StringVar(&theme, "theme", "", "HTML theme: dark or light")
	return cmd
}
