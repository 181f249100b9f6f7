// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-oriented chat with history and slash commands.
//
// Command: chat
// Short:   Chat in the terminal without the full-screen interface
//
// Examples:
//   aura chat                      Start a new conversation
//   aura chat --conversation 12    Continue conversation 12
//
// Interactive commands:
//   /help                          Show available commands
//   /new                           Start a new conversation
//   /list                          List conversations
//   /switch ID                     Open another conversation
//   /delete [ID]                   Delete a conversation (default: current)
//   /regen                         Regenerate the last reply
//   /upload PATH                   Add a file to the knowledge base
//   /rate up|down [comment]        Rate the last reply
//   /settings                      Show the conversation settings
//   /model [NAME]                  Show or change the model
//   /temp VALUE                    Change the temperature
//   /system [TEXT]                 Show or change the system prompt
//   /export [FORMAT] [DIR]         Write a transcript file
//   /analytics                     Usage summary
//   /copy                          Copy the last reply to the clipboard
//   /history                       Print the conversation
//   /quit                          Exit
//   Ctrl+C                         Cancel the reply being waited for
//   Ctrl+D                         Exit

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/aura-tui/internal/config"
	"github.com/jeranaias/aura-tui/internal/controller"
	"github.com/jeranaias/aura-tui/internal/directory"
	"github.com/jeranaias/aura-tui/internal/export"
	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/ui/components"
	"github.com/jeranaias/aura-tui/internal/ui/styles"
	"github.com/jeranaias/aura-tui/internal/util"
)

// errQuit ends the REPL loop.
var errQuit = errors.New("quit")

func (a *App) newChatCommand() *cobra.Command {
	var conversation string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat in the terminal without the full-screen interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runChat(cmd, model.ID(conversation))
		},
	}
	cmd.Flags().StringVarP(&conversation, "conversation", "c", "", "continue an existing conversation")
	return cmd
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineEditor wraps liner with a persistent history file.
type lineEditor struct {
	state       *liner.State
	historyFile string
}

func newLineEditor(historyFile string) *lineEditor {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)

	e := &lineEditor{state: state, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			if _, err := state.ReadHistory(f); err != nil {
				log.Debug().Err(err).Str("path", historyFile).Msg("read history failed")
			}
			f.Close()
		}
	}
	return e
}

// Prompt reads one line and records non-empty input in the history.
func (e *lineEditor) Prompt(prompt string) (string, error) {
	line, err := e.state.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		e.state.AppendHistory(line)
	}
	return line, nil
}

// Close saves the history with owner-only permissions.
func (e *lineEditor) Close() error {
	defer e.state.Close()
	if e.historyFile == "" {
		return nil
	}
	var sb strings.Builder
	if _, err := e.state.WriteHistory(&sb); err != nil {
		return errors.Wrap(err, "write history")
	}
	return util.AtomicWriteFileWithDir(e.historyFile, []byte(sb.String()), 0600, 0700)
}

// =============================================================================
// RUN
// =============================================================================

func (a *App) runChat(cmd *cobra.Command, conversation model.ID) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	historyFile := a.cfg.Chat.HistoryFile
	if historyFile == "" {
		historyFile = config.DefaultHistoryFile()
	}
	editor := newLineEditor(historyFile)
	defer func() {
		if err := editor.Close(); err != nil {
			log.Warn().Err(err).Msg("save history failed")
		}
	}()

	r := &repl{
		out:       out,
		print:     newPrinter(out, a.cfg.UI.Markdown, a.cfg.UI.Theme),
		theme:     styles.NewThemeWithMode(styles.ParseMode(a.cfg.UI.Theme)),
		prompt:    editor.state.Prompt,
		clipboard: clipboard.WriteAll,
		exportDir: ".",
	}
	r.ctrl = a.newController(r.confirmer(a.cfg.Chat.ConfirmDelete))
	defer r.ctrl.Wait()

	if !conversation.IsZero() {
		if err := r.ctrl.SwitchConversation(ctx, conversation); err != nil {
			return errors.Wrapf(err, "open conversation %s", conversation)
		}
	}
	r.welcome(a.cfg.Chat.ShowStarters)

	for {
		line, err := editor.Prompt(promptStyle.Render("aura> "))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D or a closed stdin all end the session.
			fmt.Fprintln(out)
			return nil
		}
		if err := r.handle(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			r.print.failure(err)
		}
	}
}

// =============================================================================
// REPL
// =============================================================================

// repl executes one input line at a time against a controller.
type repl struct {
	ctrl  *controller.Controller
	out   io.Writer
	print *printer
	theme *styles.Theme
	// prompt reads a confirmation answer without recording it in history
	prompt    func(string) (string, error)
	clipboard func(string) error
	exportDir string
}

// confirmer asks through the line editor so the terminal stays in one mode.
func (r *repl) confirmer(required bool) controller.Confirmer {
	return controller.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		if !required {
			return true, nil
		}
		answer, err := r.prompt(warningStyle.Render(prompt) + " [y/N]: ")
		if err != nil {
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}

func (r *repl) welcome(starters bool) {
	st := r.ctrl.Session().Snapshot()
	if st.ID.IsZero() {
		fmt.Fprintln(r.out, titleStyle.Render("Aura")+" "+mutedStyle.Render("new conversation"))
	} else {
		fmt.Fprintln(r.out, titleStyle.Render("Aura")+" "+mutedStyle.Render(fmt.Sprintf("%s #%s", st.Title, st.ID)))
		r.history()
	}
	if starters && len(st.Messages) == 0 {
		fmt.Fprintln(r.out, mutedStyle.Render("Try one of:"))
		for i, p := range model.StarterPrompts {
			fmt.Fprintf(r.out, "  %s %s\n", promptStyle.Render(strconv.Itoa(i+1)+"."), p)
		}
	}
	r.print.notice("Type /help for commands, Ctrl+D to exit.")
}

// handle runs one line. A bare number on an empty conversation sends the
// matching starter prompt.
func (r *repl) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, "/") {
		return r.command(ctx, line)
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(model.StarterPrompts) &&
		r.ctrl.Session().Snapshot().IsEmpty() {
		line = model.StarterPrompts[n-1]
	}
	return r.send(ctx, line)
}

// interruptible cancels ctx on Ctrl+C while a reply is awaited.
func interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

func (r *repl) send(ctx context.Context, text string) error {
	ctx, cancel := interruptible(ctx)
	defer cancel()

	before := len(r.ctrl.Session().Snapshot().Messages)
	if err := r.ctrl.SendMessage(ctx, text); err != nil {
		return err
	}
	r.printSince(before)
	return nil
}

func (r *repl) regenerate(ctx context.Context) error {
	ctx, cancel := interruptible(ctx)
	defer cancel()

	st := r.ctrl.Session().Snapshot()
	if model.LastIndexOfRole(st.Messages, model.RoleUser) < 0 || st.ID.IsZero() {
		r.print.notice("Nothing to regenerate.")
		return nil
	}
	if err := r.ctrl.Regenerate(ctx); err != nil {
		return err
	}
	msgs := r.ctrl.Session().Snapshot().Messages
	if n := len(msgs); n > 0 && msgs[n-1].Role != model.RoleUser {
		r.print.reply(msgs[n-1])
	}
	return nil
}

// printSince prints everything the exchange appended after the echoed
// user message.
func (r *repl) printSince(before int) {
	msgs := r.ctrl.Session().Snapshot().Messages
	for i := before; i < len(msgs); i++ {
		if msgs[i].Role != model.RoleUser {
			r.print.reply(msgs[i])
		}
	}
}

func (r *repl) history() {
	st := r.ctrl.Session().Snapshot()
	r.print.attachments(st.Attachments)
	if len(st.Messages) == 0 {
		r.print.notice("No messages yet.")
		return
	}
	for _, m := range st.Messages {
		r.print.message(m)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

const replHelp = `Commands:
  /new                     start a new conversation
  /list                    list conversations
  /switch ID               open another conversation
  /delete [ID]             delete a conversation (default: current)
  /regen                   regenerate the last reply
  /upload PATH             add a file to the knowledge base
  /rate up|down [comment]  rate the last reply
  /settings                show the conversation settings
  /model [NAME]            show or change the model
  /temp VALUE              change the temperature (0.0-2.0)
  /system [TEXT]           show or change the system prompt
  /export [FORMAT] [DIR]   write a transcript (markdown, json, html)
  /analytics               usage summary
  /copy                    copy the last reply to the clipboard
  /history                 print the conversation
  /quit                    exit`

func (r *repl) command(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch name {
	case "/help", "/h", "/?":
		fmt.Fprintln(r.out, replHelp)
	case "/quit", "/q", "/exit":
		return errQuit
	case "/new":
		r.ctrl.NewConversation()
		r.print.notice("Started a new conversation.")
	case "/list", "/ls":
		return r.list(ctx)
	case "/switch", "/open":
		if len(args) != 1 {
			return errors.New("usage: /switch ID")
		}
		return r.switchTo(ctx, model.ID(args[0]))
	case "/delete", "/rm":
		id := r.ctrl.Session().ID()
		if len(args) > 0 {
			id = model.ID(args[0])
		}
		if id.IsZero() {
			return errors.New("no conversation to delete")
		}
		return r.delete(ctx, id)
	case "/regen", "/regenerate", "/r":
		return r.regenerate(ctx)
	case "/upload":
		if rest == "" {
			return errors.New("usage: /upload PATH")
		}
		return r.upload(ctx, rest)
	case "/rate":
		if len(args) == 0 {
			return errors.New("usage: /rate up|down [comment]")
		}
		return r.rate(ctx, args[0], strings.TrimSpace(strings.TrimPrefix(rest, args[0])))
	case "/settings":
		r.settings()
	case "/model", "/m":
		if len(args) == 0 {
			r.models()
			return nil
		}
		variant, err := model.ParseModelVariant(args[0])
		if err != nil {
			return err
		}
		return r.applySettings(ctx, func(s *model.Settings) { s.Model = variant })
	case "/temp", "/temperature":
		if len(args) != 1 {
			return errors.New("usage: /temp VALUE")
		}
		temp, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return errors.Errorf("invalid temperature %q", args[0])
		}
		return r.applySettings(ctx, func(s *model.Settings) { s.Temperature = temp })
	case "/system":
		if rest == "" {
			r.systemPrompt()
			return nil
		}
		return r.applySettings(ctx, func(s *model.Settings) { s.SystemPrompt = rest })
	case "/export":
		return r.export(args)
	case "/analytics", "/stats":
		return r.analytics(ctx)
	case "/copy", "/y":
		return r.copyLast()
	case "/history":
		r.history()
	default:
		return errors.Errorf("unknown command %s (try /help)", fields[0])
	}
	return nil
}

func (r *repl) list(ctx context.Context) error {
	if err := r.ctrl.RefreshDirectory(ctx); err != nil {
		return errors.Wrap(err, "list conversations")
	}
	fmt.Fprint(r.out, directory.FormatList(r.ctrl.Directory().Items(), r.ctrl.Session().ID()))
	if r.ctrl.Directory().Len() == 0 {
		fmt.Fprintln(r.out)
	}
	return nil
}

func (r *repl) switchTo(ctx context.Context, id model.ID) error {
	if err := r.ctrl.SwitchConversation(ctx, id); err != nil {
		return err
	}
	st := r.ctrl.Session().Snapshot()
	fmt.Fprintln(r.out, titleStyle.Render(st.Title)+" "+mutedStyle.Render("#"+st.ID.String()))
	r.history()
	return nil
}

func (r *repl) delete(ctx context.Context, id model.ID) error {
	deleted, err := r.ctrl.DeleteConversation(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		r.print.notice("Cancelled.")
		return nil
	}
	r.print.success("Deleted conversation %s", id)
	return nil
}

func (r *repl) upload(ctx context.Context, path string) error {
	att, err := r.ctrl.UploadFile(ctx, path)
	if err != nil {
		return err
	}
	if att == nil {
		return nil
	}
	r.print.success("Uploaded %s", att.Filename)
	r.print.attachments(r.ctrl.Session().Snapshot().Attachments)
	return nil
}

// lastRateable returns the most recent reply that can take feedback.
func (r *repl) lastRateable() (model.Message, bool) {
	msgs := r.ctrl.Session().Snapshot().Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].CanRate() {
			return msgs[i], true
		}
	}
	return model.Message{}, false
}

func (r *repl) rate(ctx context.Context, direction, comment string) error {
	var positive bool
	switch strings.ToLower(direction) {
	case "up", "+", "good":
		positive = true
	case "down", "-", "bad":
		positive = false
	default:
		return errors.New("usage: /rate up|down [comment]")
	}
	msg, ok := r.lastRateable()
	if !ok {
		return errors.New("no saved reply to rate")
	}
	if err := r.ctrl.GiveFeedbackWithComment(ctx, msg.ID, positive, comment); err != nil {
		return err
	}
	r.print.success("Thanks for the feedback")
	return nil
}

func (r *repl) settings() {
	s := r.ctrl.Session().Settings()
	fmt.Fprintln(r.out, labelValue("Model", s.Model.Label()))
	fmt.Fprintln(r.out, labelValue("Temperature", strconv.FormatFloat(s.Temperature, 'f', 1, 64)))
	r.systemPrompt()
}

func (r *repl) systemPrompt() {
	prompt := r.ctrl.Session().Settings().SystemPrompt
	if prompt == "" {
		prompt = mutedStyle.Render("(none)")
	}
	fmt.Fprintln(r.out, labelValue("System prompt", prompt))
}

func (r *repl) models() {
	current := r.ctrl.Session().Settings().Model
	for _, v := range model.Variants {
		marker := "  "
		if v.Variant == current {
			marker = "* "
		}
		fmt.Fprintf(r.out, "%s%-10s %s\n", marker, v.Short, mutedStyle.Render(v.Label))
	}
}

// applySettings edits the settings and persists them, creating the
// conversation first so they take effect for the next reply.
func (r *repl) applySettings(ctx context.Context, edit func(*model.Settings)) error {
	s := r.ctrl.Session().Settings()
	edit(&s)
	if err := r.ctrl.UpdateSettings(s); err != nil {
		return err
	}
	if _, err := r.ctrl.EnsureConversation(ctx, ""); err != nil {
		return err
	}
	if err := r.ctrl.SaveSettings(ctx); err != nil {
		return err
	}
	r.print.success("Settings saved")
	return nil
}

func (r *repl) export(args []string) error {
	format := export.FormatMarkdown
	if len(args) > 0 {
		f, err := export.ParseFormat(args[0])
		if err != nil {
			return err
		}
		format = f
	}
	opts := export.DefaultOptions()
	opts.OutputDir = r.exportDir
	if len(args) > 1 {
		opts.OutputDir = args[1]
	}
	exporter, err := export.NewExporter(format, opts)
	if err != nil {
		return err
	}
	st := r.ctrl.Session().Snapshot()
	if len(st.Messages) == 0 {
		return errors.New("nothing to export")
	}
	path, err := export.ExportToFile(export.FromState(st), exporter, opts)
	if err != nil {
		return err
	}
	r.print.success("Exported to %s", path)
	return nil
}

func (r *repl) analytics(ctx context.Context) error {
	a, err := r.ctrl.Analytics(ctx)
	if err != nil {
		return errors.Wrap(err, "analytics")
	}
	fmt.Fprintln(r.out, components.RenderAnalytics(r.theme, a, analyticsWidth(r.print.width), ""))
	return nil
}

func (r *repl) copyLast() error {
	msgs := r.ctrl.Session().Snapshot().Messages
	idx := model.LastIndexOfRole(msgs, model.RoleAssistant)
	if idx < 0 {
		return errors.New("no reply to copy")
	}
	text, ok := r.ctrl.CopyMessage(msgs[idx].Key)
	if !ok {
		return errors.New("no reply to copy")
	}
	if err := r.clipboard(text); err != nil {
		return errors.Wrap(err, "copy to clipboard")
	}
	r.print.success("Copied to clipboard")
	return nil
}
