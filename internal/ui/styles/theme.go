// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode selects how the theme decides between light and dark colors.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// ParseMode maps a config value to a Mode. Unknown values fall back to auto.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDark:
		return ModeDark
	case ModeLight:
		return ModeLight
	default:
		return ModeAuto
	}
}

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	Mode         Mode
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER / LAYOUT
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style
	Divider     lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	SystemLabel     lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	MessageSelected lipgloss.Style
	Timestamp       lipgloss.Style
	FeedbackUp      lipgloss.Style
	FeedbackDown    lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar           lipgloss.Style
	SidebarFocused    lipgloss.Style
	SidebarTitle      lipgloss.Style
	SidebarItem       lipgloss.Style
	SidebarItemActive lipgloss.Style
	SidebarItemCursor lipgloss.Style

	// ==========================================================================
	// INPUT / STATUS
	// ==========================================================================

	InputContainer        lipgloss.Style
	InputContainerFocused lipgloss.Style
	InputPrompt           lipgloss.Style
	StatusBar             lipgloss.Style
	StatusModel           lipgloss.Style
	StatusBusy            lipgloss.Style
	ShortcutKey           lipgloss.Style
	ShortcutDesc          lipgloss.Style
	Spinner               lipgloss.Style

	// ==========================================================================
	// OVERLAYS
	// ==========================================================================

	Modal        lipgloss.Style
	ModalTitle   lipgloss.Style
	FieldLabel   lipgloss.Style
	FieldActive  lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	BarFill      lipgloss.Style
	BarEmpty     lipgloss.Style
	Starter      lipgloss.Style
	Attachment   lipgloss.Style

	// ==========================================================================
	// STATES
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	Muted        lipgloss.Style
}

// NewTheme creates a theme that follows the terminal background.
func NewTheme() *Theme {
	return NewThemeWithMode(ModeAuto)
}

// NewThemeWithMode creates a theme. A forced mode overrides background
// detection for every AdaptiveColor rendered through lipgloss.
func NewThemeWithMode(mode Mode) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		mode = ModeAuto
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		Mode:         mode,
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// GlamourStyle names the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.HeaderMeta = lipgloss.NewStyle().Foreground(TextSecondary)
	t.Divider = lipgloss.NewStyle().Foreground(Overlay)

	// Messages
	t.UserLabel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.SystemLabel = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(UserBubbleBorder).
		PaddingLeft(1)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(AssistantBubbleBorder).
		PaddingLeft(1)
	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(SystemBubbleBorder).
		PaddingLeft(1).
		Italic(true)
	t.MessageSelected = lipgloss.NewStyle().BorderForeground(Cyan)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.FeedbackUp = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.FeedbackDown = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarFocused = t.Sidebar.BorderForeground(Cyan)
	t.SidebarTitle = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true).MarginBottom(1)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SidebarItemActive = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.SidebarItemCursor = lipgloss.NewStyle().Background(SelectionBg).Foreground(TextPrimary)

	// Input and status
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputContainerFocused = t.InputContainer.BorderForeground(Purple)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusModel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.StatusBusy = lipgloss.NewStyle().Foreground(Amber)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)

	// Overlays
	t.Modal = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)
	t.ModalTitle = lipgloss.NewStyle().Foreground(Purple).Bold(true).MarginBottom(1)
	t.FieldLabel = lipgloss.NewStyle().Foreground(TextSecondary).Width(16)
	t.FieldActive = lipgloss.NewStyle().Foreground(Cyan).Bold(true).Width(16)
	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(Overlay).
		Padding(0, 2)
	t.ButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 2)
	t.BarFill = lipgloss.NewStyle().Foreground(Purple)
	t.BarEmpty = lipgloss.NewStyle().Foreground(OverlayDim)
	t.Starter = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.Attachment = lipgloss.NewStyle().Foreground(Emerald)

	// States
	t.SuccessStyle = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Cyan)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
}

// RoleLabel returns the styled speaker label for a role name.
func (t *Theme) RoleLabel(role, text string) string {
	switch role {
	case "user":
		return t.UserLabel.Render(text)
	case "assistant":
		return t.AssistantLabel.Render(text)
	default:
		return t.SystemLabel.Render(text)
	}
}

// Bubble returns the message container style for a role name.
func (t *Theme) Bubble(role string) lipgloss.Style {
	switch role {
	case "user":
		return t.UserBubble
	case "assistant":
		return t.AssistantBubble
	default:
		return t.SystemBubble
	}
}
