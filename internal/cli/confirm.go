// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/jeranaias/aura-tui/internal/controller"
)

// ErrConfirmationRequired is returned when a destructive command cannot
// prompt and --yes was not given.
var ErrConfirmationRequired = errors.New("confirmation required: pass --yes or run in a terminal")

// =============================================================================
// CONFIRMATION
// =============================================================================

// confirmOptions selects how a command approves destructive actions.
type confirmOptions struct {
	// Yes skips the prompt (--yes)
	Yes bool
	// Required is false when [chat] confirm_delete is off
	Required bool
	In       io.Reader
	Out      io.Writer
}

// newConfirmer returns the confirmation step for line-oriented commands.
//  1. --yes or confirm_delete=false approves immediately
//  2. a non-terminal stdin is refused
//  3. otherwise the user is asked
func newConfirmer(opts confirmOptions) controller.Confirmer {
	return controller.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		if opts.Yes || !opts.Required {
			return true, nil
		}
		if !isTerminal(opts.In) {
			return false, ErrConfirmationRequired
		}
		return promptYesNo(ctx, opts.In, opts.Out, prompt)
	})
}

// promptYesNo reads a y/N answer. Anything but y or yes declines.
func promptYesNo(ctx context.Context, in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s %s ", warningStyle.Render(prompt), mutedStyle.Render("[y/N]:"))

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(in).ReadString('\n')
		answer <- line
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(out)
		return false, ctx.Err()
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
