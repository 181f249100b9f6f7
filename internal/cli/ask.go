// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Send one message and print the reply.
//
// Command: ask [message...]
// Short:   Send one message and print the reply
//
// Examples:
//   aura ask "Explain quantum physics"
//   aura ask --model precise --temp 0.2 "Review this function" < main.go
//   aura ask --file notes.txt "Summarize the notes"
//   aura ask --conversation 12 --json "And in one sentence?"
//
// Exit status is 1 when the service could not produce a reply.

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/aura-tui/internal/controller"
	"github.com/jeranaias/aura-tui/internal/model"
)

// askOptions are the flags of the ask command.
type askOptions struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	Conversation string
	Files        []string
	JSON         bool
}

// askResult is the --json payload of a successful ask.
type askResult struct {
	ConversationID model.ID      `json:"conversation_id"`
	Title          string        `json:"title"`
	Reply          model.Message `json:"reply"`
}

func (a *App) newAskCommand() *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [message...]",
		Short: "Send one message and print the reply",
		Long: `Send one message and print the reply.

The message is read from stdin when no arguments are given or the only
argument is "-". Without --conversation a new conversation is created.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Model, "model", "m", "", "model: standard, creative or precise")
	f.Float64VarP(&opts.Temperature, "temp", "t", model.DefaultTemperature, "temperature (0.0-2.0)")
	f.StringVarP(&opts.SystemPrompt, "system", "s", "", "system prompt")
	f.StringVarP(&opts.Conversation, "conversation", "c", "", "continue an existing conversation")
	f.StringArrayVarP(&opts.Files, "file", "f", nil, "add a file to the knowledge base first (repeatable)")
	f.BoolVar(&opts.JSON, "json", false, "print the reply as JSON")
	return cmd
}

func (a *App) runAsk(cmd *cobra.Command, args []string, opts askOptions) error {
	text, err := readMessage(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible(cmd.Context())
	defer cancel()

	ctrl := a.newController(nil)
	defer ctrl.Wait()

	if opts.Conversation != "" {
		id, err := parseID(opts.Conversation)
		if err != nil {
			return err
		}
		if err := ctrl.SwitchConversation(ctx, id); err != nil {
			return errors.Wrapf(err, "open conversation %s", id)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("model") || flags.Changed("temp") || flags.Changed("system") {
		if err := applyAskSettings(ctx, ctrl, opts, flags.Changed, model.DeriveTitle(text)); err != nil {
			return err
		}
	}

	for _, path := range opts.Files {
		if _, err := ctrl.UploadFile(ctx, path); err != nil {
			return errors.Wrapf(err, "upload %s", path)
		}
	}

	before := len(ctrl.Session().Snapshot().Messages)
	if err := ctrl.SendMessage(ctx, text); err != nil {
		return err
	}
	st := ctrl.Session().Snapshot()
	reply, ok := lastReply(st.Messages, before)
	if !ok {
		return errors.New("no reply received")
	}

	out := cmd.OutOrStdout()
	if reply.Role == model.RoleSystem {
		if opts.JSON {
			_ = NewJSONErrorResponse("ask", errors.New(reply.Content)).Write(out)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), noticeStyle.Render(reply.Content))
		}
		return exitError{code: 1}
	}

	if opts.JSON {
		return NewJSONResponse("ask", askResult{
			ConversationID: st.ID,
			Title:          st.Title,
			Reply:          reply,
		}).Write(out)
	}
	newPrinter(out, a.cfg.UI.Markdown, a.cfg.UI.Theme).reply(reply)
	return nil
}

// applyAskSettings persists the flag settings before the message is sent,
// creating the conversation under title when needed.
func applyAskSettings(ctx context.Context, ctrl *controller.Controller, opts askOptions, changed func(string) bool, title string) error {
	s := ctrl.Session().Settings()
	if changed("model") {
		variant, err := model.ParseModelVariant(opts.Model)
		if err != nil {
			return err
		}
		s.Model = variant
	}
	if changed("temp") {
		s.Temperature = opts.Temperature
	}
	if changed("system") {
		s.SystemPrompt = opts.SystemPrompt
	}
	if err := ctrl.UpdateSettings(s); err != nil {
		return err
	}
	if _, err := ctrl.EnsureConversation(ctx, title); err != nil {
		return err
	}
	return ctrl.SaveSettings(ctx)
}

// readMessage joins the arguments, or reads stdin for none or "-".
func readMessage(in io.Reader, args []string) (string, error) {
	var text string
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		if isTerminal(in) {
			return "", errors.New("no message given")
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}
		text = string(data)
	} else {
		text = strings.Join(args, " ")
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("message is empty")
	}
	return text, nil
}

// lastReply returns the final non-user message appended after index before.
func lastReply(msgs []model.Message, before int) (model.Message, bool) {
	for i := len(msgs) - 1; i >= before && i >= 0; i-- {
		if msgs[i].Role != model.RoleUser {
			return msgs[i], true
		}
	}
	return model.Message{}, false
}
