// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aura-tui/internal/model"
)

// flashDuration is how long a status bar flash stays visible.
const flashDuration = 3 * time.Second

// =============================================================================
// CONTROLLER COMMANDS
// =============================================================================

func (m Model) refreshCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "refresh", err: ctrl.RefreshDirectory(ctx)}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "send", err: ctrl.SendMessage(ctx, text)}
	}
}

func (m Model) regenerateCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "regenerate", err: ctrl.Regenerate(ctx)}
	}
}

func (m Model) newChatCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.NewConversation()
		return opDoneMsg{op: "new"}
	}
}

func (m Model) switchCmd(id model.ID) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "switch", err: ctrl.SwitchConversation(ctx, id)}
	}
}

func (m Model) deleteCmd(id model.ID) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		deleted, err := ctrl.DeleteConversation(ctx, id)
		return deleteDoneMsg{deleted: deleted, err: err}
	}
}

func (m Model) uploadCmd(path string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		att, err := ctrl.UploadFile(ctx, path)
		return uploadDoneMsg{attachment: att, err: err}
	}
}

func (m Model) feedbackCmd(id model.ID, positive bool) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "feedback", err: ctrl.GiveFeedback(ctx, id, positive)}
	}
}

// saveSettingsCmd stores s locally and persists it when the conversation
// has an identity.
func (m Model) saveSettingsCmd(s model.Settings) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.UpdateSettings(s); err != nil {
			return opDoneMsg{op: "settings", err: err}
		}
		return opDoneMsg{op: "settings", err: ctrl.SaveSettings(ctx)}
	}
}

func (m Model) analyticsCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		a, err := ctrl.Analytics(ctx)
		return analyticsMsg{analytics: a, err: err}
	}
}

// =============================================================================
// FLASH
// =============================================================================

// setFlash shows text in the status bar until the returned command fires.
func (m *Model) setFlash(text string) tea.Cmd {
	m.flashSeq++
	m.flash = text
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashClearMsg{seq: seq}
	})
}
