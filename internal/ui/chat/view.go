// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/ui/components"
	"github.com/jeranaias/aura-tui/internal/util"
)

const (
	// minSidebarScreen is the narrowest screen that still shows the sidebar.
	minSidebarScreen = 72

	inputHeight = 3
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) sidebarVisible() bool {
	return m.width >= minSidebarScreen
}

func (m Model) sidebarWidth() int {
	if !m.sidebarVisible() {
		return 0
	}
	return m.opts.SidebarWidth
}

func (m Model) bodyHeight() int {
	h := m.height - 2
	if h < 4 {
		h = 4
	}
	return h
}

func (m Model) showingStarters() bool {
	return m.opts.ShowStarters && len(m.state.Messages) == 0
}

// layout sizes the viewport, input and sidebar for the current screen.
func (m *Model) layout() {
	mainWidth := m.width - m.sidebarWidth()
	if mainWidth < 20 {
		mainWidth = 20
	}

	m.input.SetWidth(mainWidth - 4)
	m.input.SetHeight(inputHeight)

	vpHeight := m.bodyHeight() - (inputHeight + 2)
	if len(m.state.Attachments) > 0 {
		vpHeight--
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = mainWidth
	m.viewport.Height = vpHeight

	m.sidebar.Width = m.sidebarWidth()
	m.sidebar.Height = m.bodyHeight()
	m.sidebar.Active = m.state.ID
}

// renderHistory refreshes the viewport content. With toBottom it follows
// the newest message; otherwise it keeps the selection in view.
func (m *Model) renderHistory(toBottom bool) {
	if m.showingStarters() {
		m.offsets = nil
		m.viewport.SetContent(components.RenderStarters(m.theme, model.StarterPrompts, m.viewport.Width))
		m.viewport.GotoTop()
		return
	}

	m.messages.Width = m.viewport.Width - 2
	m.messages.Selected = m.selected
	content, offsets := m.messages.Render(m.state.Messages)
	m.offsets = offsets
	m.viewport.SetContent(content)

	switch {
	case toBottom:
		m.viewport.GotoBottom()
	case m.selected >= 0 && m.selected < len(offsets):
		top := offsets[m.selected]
		if top < m.viewport.YOffset || top >= m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(top)
		}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var body string
	switch m.overlay {
	case overlaySettings:
		body = m.place(m.settingsForm.View())
	case overlayAnalytics:
		body = m.place(components.RenderAnalytics(m.theme, m.analytics, 56, "esc close  r refresh"))
	case overlayConfirm:
		body = m.place(m.confirm.View())
	case overlayUpload:
		body = m.place(m.uploadView())
	default:
		body = m.mainView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.statusView())
}

func (m Model) place(s string) string {
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, s)
}

func (m Model) headerView() string {
	t := m.theme
	title := model.DefaultTitle
	if m.state.Title != "" {
		title = m.state.Title
	}
	meta := "new conversation"
	if !m.state.ID.IsZero() {
		meta = "#" + m.state.ID.String()
	}
	line := t.HeaderTitle.Render("Aura") + "  " +
		util.TruncateWidth(util.SingleLine(title), maxWidth(m.width-24, 10)) + "  " +
		t.HeaderMeta.Render(meta)
	return t.Header.Width(m.width).MaxWidth(m.width).Render(line)
}

func (m Model) mainView() string {
	t := m.theme

	var parts []string
	if att := components.RenderAttachments(t, m.state.Attachments, m.viewport.Width); att != "" {
		parts = append(parts, att)
	}
	parts = append(parts, m.viewport.View())

	box := t.InputContainer
	if m.focus == focusInput {
		box = t.InputContainerFocused
	}
	parts = append(parts, box.Width(m.viewport.Width-2).Render(m.input.View()))
	main := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if !m.sidebarVisible() {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(m.items), main)
}

func (m Model) statusView() string {
	bar := components.StatusBar{
		Theme:     m.theme,
		Width:     m.width,
		Settings:  m.state.Settings,
		Sending:   m.state.Sending,
		Uploading: m.state.Uploading,
		Spinner:   m.spinner.View(),
		Flash:     m.flash,
	}
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		bar.Shortcuts = append(bar.Shortcuts, components.Shortcut{Key: h.Key, Desc: h.Desc})
	}
	return bar.View()
}

func (m Model) uploadView() string {
	t := m.theme
	return t.Modal.Width(56).Render(lipgloss.JoinVertical(lipgloss.Left,
		t.ModalTitle.Render("Upload a file"),
		m.upload.View(),
		"",
		t.ShortcutDesc.Render("enter upload  esc cancel"),
	))
}

func maxWidth(a, b int) int {
	if a > b {
		return a
	}
	return b
}
