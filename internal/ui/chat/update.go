// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/jeranaias/aura-tui/internal/api"
	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/session"
	"github.com/jeranaias/aura-tui/internal/ui/components"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		m.renderHistory(false)
		return m, nil

	case SessionChangedMsg:
		return m.handleSessionChanged()

	case DirectoryChangedMsg:
		m.items = m.ctrl.Directory().Items()
		m.sidebar.MoveCursor(0, len(m.items))
		return m, nil

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case ConfirmRequestMsg:
		if m.confirmReply != nil {
			msg.Reply <- false
			return m, nil
		}
		m.confirm = components.NewConfirmDialog(m.theme, msg.Prompt)
		m.confirmReply = msg.Reply
		m.overlay = overlayConfirm
		return m, nil

	case opDoneMsg:
		return m.handleOpDone(msg)

	case uploadDoneMsg:
		switch {
		case msg.err != nil:
			return m, m.setFlash("Upload failed: " + errorText(msg.err))
		case msg.attachment != nil:
			return m, m.setFlash("Uploaded " + msg.attachment.Filename)
		}
		return m, nil

	case deleteDoneMsg:
		switch {
		case msg.err != nil:
			return m, m.setFlash("Delete failed: " + errorText(msg.err))
		case msg.deleted:
			return m, m.setFlash("Conversation deleted")
		}
		return m, nil

	case analyticsMsg:
		if msg.err != nil {
			m.overlay = overlayNone
			return m, m.setFlash("Analytics unavailable: " + errorText(msg.err))
		}
		m.analytics = msg.analytics
		return m, nil

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// STATE CHANGES
// =============================================================================

func (m Model) handleSessionChanged() (tea.Model, tea.Cmd) {
	prev := m.state
	m.state = m.ctrl.Session().Snapshot()

	if prev.Generation != m.state.Generation {
		m.selected = -1
	}
	if m.selected >= len(m.state.Messages) {
		m.selected = len(m.state.Messages) - 1
	}
	m.sidebar.Active = m.state.ID
	m.layout()
	m.renderHistory(len(m.state.Messages) != len(prev.Messages) || prev.Generation != m.state.Generation)
	return m, nil
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.Warn().Err(msg.Err).Msg("config reload failed")
		return m, m.setFlash("Config reload failed: " + errorText(msg.Err))
	}
	next := OptionsFromConfig(msg.Config)
	next.Clipboard = m.opts.Clipboard
	next.Logger = m.opts.Logger
	m.opts = next
	m.applyTheme()
	m.layout()
	m.renderHistory(false)
	return m, m.setFlash("Config reloaded")
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		switch msg.op {
		case "settings":
			return m, m.setFlash("Settings saved")
		case "feedback":
			return m, m.setFlash("Thanks for the feedback")
		}
		return m, nil
	}

	switch {
	case errors.Is(msg.err, session.ErrBusy):
		return m, m.setFlash("Still waiting for the current reply")
	case errors.Is(msg.err, session.ErrEmptyMessage):
		return m, nil
	case msg.op == "refresh":
		m.log.Warn().Err(msg.err).Msg("directory refresh failed")
		return m, m.setFlash("Could not load conversations")
	}
	m.log.Error().Err(msg.err).Str("op", msg.op).Msg("operation failed")
	return m, m.setFlash(fmt.Sprintf("%s failed: %s", opLabel(msg.op), errorText(msg.err)))
}

func opLabel(op string) string {
	if op == "" {
		return "Operation"
	}
	return strings.ToUpper(op[:1]) + op[1:]
}

func errorText(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	return err.Error()
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.confirmReply != nil {
			m.confirmReply <- false
			m.confirmReply = nil
		}
		return m, tea.Quit
	}

	switch m.overlay {
	case overlaySettings:
		return m.handleSettingsKey(msg)
	case overlayAnalytics:
		switch {
		case key.Matches(msg, m.keys.Back), msg.String() == "q":
			m.overlay = overlayNone
		case key.Matches(msg, m.keys.Refresh):
			return m, m.analyticsCmd()
		}
		return m, nil
	case overlayConfirm:
		var done, ok bool
		m.confirm, done, ok = m.confirm.Update(msg)
		if done {
			m.confirmReply <- ok
			m.confirmReply = nil
			m.overlay = overlayNone
		}
		return m, nil
	case overlayUpload:
		return m.handleUploadKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NewChat):
		m.input.Reset()
		m.focusOn(focusInput)
		return m, m.newChatCmd()
	case key.Matches(msg, m.keys.Regenerate):
		if m.state.Sending {
			return m, m.setFlash("Still waiting for the current reply")
		}
		return m, m.regenerateCmd()
	case key.Matches(msg, m.keys.Upload):
		if m.state.Uploading {
			return m, m.setFlash("An upload is already in progress")
		}
		m.upload.Reset()
		m.upload.Focus()
		m.overlay = overlayUpload
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		m.settingsForm = components.NewSettingsForm(m.theme, m.state.Settings)
		m.overlay = overlaySettings
		return m, nil
	case key.Matches(msg, m.keys.Analytics):
		m.analytics = nil
		m.overlay = overlayAnalytics
		return m, m.analyticsCmd()
	case key.Matches(msg, m.keys.NextFocus):
		m.focusOn((m.focus + 1) % 3)
		return m, nil
	case key.Matches(msg, m.keys.Back) && m.focus != focusInput:
		m.focusOn(focusInput)
		return m, nil
	}

	switch m.focus {
	case focusHistory:
		return m.handleHistoryKey(msg)
	case focusSidebar:
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m *Model) focusOn(f focusArea) {
	if f == focusSidebar && !m.sidebarVisible() {
		f = focusInput
	}
	m.focus = f
	m.sidebar.Focused = f == focusSidebar
	if f == focusInput {
		m.input.Focus()
		m.selected = -1
	} else {
		m.input.Blur()
	}
	if f == focusHistory && m.selected < 0 && len(m.state.Messages) > 0 {
		m.selected = len(m.state.Messages) - 1
	}
	if f == focusSidebar {
		if i := indexOf(m.items, m.state.ID); i >= 0 {
			m.sidebar.Cursor = i
		}
	}
	m.renderHistory(false)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if m.state.Sending {
			return m, m.setFlash("Still waiting for the current reply")
		}
		m.input.Reset()
		return m, m.sendCmd(text)
	}

	// Number keys pick a starter prompt on an empty conversation.
	if m.showingStarters() && m.input.Value() == "" && len(msg.Runes) == 1 {
		if i := int(msg.Runes[0] - '1'); i >= 0 && i < len(model.StarterPrompts) {
			return m, m.sendCmd(model.StarterPrompts[i])
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.state.Messages)
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < n-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Top):
		if n > 0 {
			m.selected = 0
		}
	case key.Matches(msg, m.keys.Bottom):
		m.selected = n - 1
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.RateUp), key.Matches(msg, m.keys.RateDown):
		return m.rateSelected(key.Matches(msg, m.keys.RateUp))
	case key.Matches(msg, m.keys.Copy):
		return m.copySelected()
	case key.Matches(msg, m.keys.Model):
		return m.cycleModel()
	default:
		return m, nil
	}
	m.renderHistory(false)
	return m, nil
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.MoveCursor(-1, len(m.items))
	case key.Matches(msg, m.keys.Down):
		m.sidebar.MoveCursor(1, len(m.items))
	case key.Matches(msg, m.keys.Top):
		m.sidebar.Cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.sidebar.MoveCursor(len(m.items), len(m.items))
	case key.Matches(msg, m.keys.Open):
		if s, ok := m.cursorItem(); ok {
			m.focusOn(focusInput)
			return m, m.switchCmd(s.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		if s, ok := m.cursorItem(); ok {
			return m, m.deleteCmd(s.ID)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Model):
		return m.cycleModel()
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		cmd    tea.Cmd
		action components.SettingsAction
	)
	m.settingsForm, cmd, action = m.settingsForm.Update(msg)
	switch action {
	case components.SettingsCancel:
		m.overlay = overlayNone
	case components.SettingsSave:
		s, err := m.settingsForm.Settings()
		if err != nil {
			m.settingsForm.SetError(err)
			return m, nil
		}
		m.overlay = overlayNone
		return m, m.saveSettingsCmd(s)
	}
	return m, cmd
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.overlay = overlayNone
		return m, nil
	case msg.Type == tea.KeyEnter:
		path := strings.TrimSpace(m.upload.Value())
		m.overlay = overlayNone
		if path == "" {
			return m, nil
		}
		return m, m.uploadCmd(path)
	}
	var cmd tea.Cmd
	m.upload, cmd = m.upload.Update(msg)
	return m, cmd
}

// =============================================================================
// MESSAGE ACTIONS
// =============================================================================

func (m Model) selectedMessage() (model.Message, bool) {
	if m.selected < 0 || m.selected >= len(m.state.Messages) {
		return model.Message{}, false
	}
	return m.state.Messages[m.selected], true
}

func (m Model) rateSelected(positive bool) (tea.Model, tea.Cmd) {
	msg, ok := m.selectedMessage()
	if !ok || !msg.CanRate() {
		return m, m.setFlash("Only saved replies can be rated")
	}
	return m, m.feedbackCmd(msg.ID, positive)
}

func (m Model) copySelected() (tea.Model, tea.Cmd) {
	msg, ok := m.selectedMessage()
	if !ok {
		return m, nil
	}
	content, ok := m.ctrl.CopyMessage(msg.Key)
	if !ok {
		return m, nil
	}
	if err := m.opts.Clipboard(content); err != nil {
		m.log.Warn().Err(err).Msg("clipboard write failed")
		return m, m.setFlash("Clipboard unavailable")
	}
	return m, m.setFlash("Copied to clipboard")
}

func (m Model) cycleModel() (tea.Model, tea.Cmd) {
	s := m.state.Settings
	s.Model = s.Model.Next()
	return m, m.saveSettingsCmd(s)
}

func (m Model) cursorItem() (model.Summary, bool) {
	if m.sidebar.Cursor < 0 || m.sidebar.Cursor >= len(m.items) {
		return model.Summary{}, false
	}
	return m.items[m.sidebar.Cursor], true
}

func indexOf(items []model.Summary, id model.ID) int {
	if id.IsZero() {
		return -1
	}
	for i, s := range items {
		if s.ID == id {
			return i
		}
	}
	return -1
}
