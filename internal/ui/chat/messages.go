// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/aura-tui/internal/config"
	"github.com/jeranaias/aura-tui/internal/model"
)

// =============================================================================
// STATE NOTIFICATIONS
// =============================================================================

// SessionChangedMsg reports that the session state changed.
type SessionChangedMsg struct{}

// DirectoryChangedMsg reports that the conversation list changed.
type DirectoryChangedMsg struct{}

// ConfigReloadedMsg carries a reloaded configuration file.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// =============================================================================
// CONFIRMATION
// =============================================================================

// ConfirmRequestMsg asks the UI to confirm a destructive action. The answer
// is sent on Reply exactly once.
type ConfirmRequestMsg struct {
	Prompt string
	Reply  chan<- bool
}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// opDoneMsg reports the end of a controller operation.
type opDoneMsg struct {
	op  string
	err error
}

type uploadDoneMsg struct {
	attachment *model.Attachment
	err        error
}

type deleteDoneMsg struct {
	deleted bool
	err     error
}

type analyticsMsg struct {
	analytics *model.Analytics
	err       error
}

type flashClearMsg struct {
	seq int
}
