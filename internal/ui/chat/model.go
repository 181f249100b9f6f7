// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/aura-tui/internal/config"
	"github.com/jeranaias/aura-tui/internal/controller"
	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/session"
	"github.com/jeranaias/aura-tui/internal/ui/components"
	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the chat view.
type Options struct {
	Theme          string
	Markdown       bool
	CodeStyle      string
	ShowTimestamps bool
	ShowStarters   bool
	SidebarWidth   int

	// Clipboard writes copied text. Defaults to the system clipboard.
	Clipboard func(string) error

	Logger zerolog.Logger
}

// OptionsFromConfig builds options from the [ui] and [chat] sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Theme:          cfg.UI.Theme,
		Markdown:       cfg.UI.Markdown,
		CodeStyle:      cfg.UI.CodeStyle,
		ShowTimestamps: cfg.UI.ShowTimestamps,
		ShowStarters:   cfg.Chat.ShowStarters,
		SidebarWidth:   cfg.UI.SidebarWidth,
		Clipboard:      clipboard.WriteAll,
		Logger:         zerolog.Nop(),
	}
}

// =============================================================================
// MODEL
// =============================================================================

type focusArea int

const (
	focusInput focusArea = iota
	focusHistory
	focusSidebar
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlaySettings
	overlayAnalytics
	overlayConfirm
	overlayUpload
)

// Model is the Bubble Tea model of the chat screen. It renders snapshots
// of the controller's session and directory and runs every operation as a
// command so the event loop never blocks on the network.
type Model struct {
	ctx  context.Context
	ctrl *controller.Controller
	opts Options
	keys KeyMap
	log  zerolog.Logger

	theme    *styles.Theme
	messages *components.MessageList
	sidebar  components.Sidebar

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	upload   textinput.Model

	// Rendered state
	state   session.State
	items   []model.Summary
	offsets []int

	focus    focusArea
	overlay  overlayKind
	selected int

	settingsForm components.SettingsForm
	confirm      components.ConfirmDialog
	confirmReply chan<- bool
	analytics    *model.Analytics

	flash    string
	flashSeq int

	width  int
	height int
	ready  bool
}

// New creates the chat model. ctx bounds every operation it starts.
func New(ctx context.Context, ctrl *controller.Controller, opts Options) Model {
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.CodeStyle == "" {
		opts.CodeStyle = components.DefaultCodeStyle
	}
	if opts.SidebarWidth <= 0 {
		opts.SidebarWidth = 28
	}

	input := textarea.New()
	input.Placeholder = "Message Aura..."
	input.ShowLineNumbers = false
	input.SetHeight(3)
	input.CharLimit = 0
	input.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	input.Focus()

	upload := textinput.New()
	upload.Placeholder = "path/to/file"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		opts:     opts,
		keys:     DefaultKeyMap(),
		log:      opts.Logger,
		input:    input,
		upload:   upload,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		selected: -1,
		width:    100,
		height:   30,
	}
	m.applyTheme()
	m.state = ctrl.Session().Snapshot()
	m.items = ctrl.Directory().Items()
	return m
}

// applyTheme rebuilds everything that depends on the appearance options.
func (m *Model) applyTheme() {
	m.theme = styles.NewThemeWithMode(styles.ParseMode(m.opts.Theme))
	m.spinner.Style = m.theme.Spinner

	ml := components.NewMessageList(m.theme)
	ml.CodeStyle = m.opts.CodeStyle
	ml.ShowTimestamps = m.opts.ShowTimestamps
	if m.opts.Markdown {
		style := ""
		if m.theme.Mode != styles.ModeAuto {
			style = m.theme.GlamourStyle()
		}
		ml.Markdown = components.NewMarkdownRenderer(style)
	}
	m.messages = ml
	m.sidebar.Theme = m.theme
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.refreshCmd())
}

// State returns the session snapshot the model last rendered.
func (m Model) State() session.State {
	return m.state
}
