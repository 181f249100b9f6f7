// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

// =============================================================================
// SETTINGS FORM
// =============================================================================

// SettingsAction is the outcome of a key press in the settings form.
type SettingsAction int

const (
	SettingsNone SettingsAction = iota
	SettingsSave
	SettingsCancel
)

const (
	fieldPrompt = iota
	fieldTemperature
	fieldModel
	fieldCount
)

// SettingsForm edits the system prompt, temperature and model of the open
// conversation.
type SettingsForm struct {
	Theme *styles.Theme
	Width int

	prompt  textarea.Model
	temp    textinput.Model
	variant model.ModelVariant
	focus   int
	err     string
}

// NewSettingsForm creates a form populated from s.
func NewSettingsForm(theme *styles.Theme, s model.Settings) SettingsForm {
	prompt := textarea.New()
	prompt.Placeholder = "You are a helpful assistant..."
	prompt.ShowLineNumbers = false
	prompt.SetHeight(4)
	prompt.SetValue(s.SystemPrompt)

	temp := textinput.New()
	temp.CharLimit = 4
	temp.Width = 6
	temp.SetValue(strconv.FormatFloat(s.Temperature, 'f', -1, 64))

	variant := s.Model
	if !variant.IsValid() {
		variant = model.DefaultModel
	}

	f := SettingsForm{
		Theme:   theme,
		Width:   64,
		prompt:  prompt,
		temp:    temp,
		variant: variant,
	}
	f.applyFocus()
	return f
}

// Settings parses the form. The temperature is coerced to a number and must
// be within range.
func (f SettingsForm) Settings() (model.Settings, error) {
	raw := strings.TrimSpace(f.temp.Value())
	temp, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.Settings{}, errors.Errorf("temperature %q is not a number", raw)
	}
	s := model.Settings{
		SystemPrompt: f.prompt.Value(),
		Temperature:  temp,
		Model:        f.variant,
	}
	if err := s.Validate(); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// SetError shows err under the form.
func (f *SettingsForm) SetError(err error) {
	if err == nil {
		f.err = ""
		return
	}
	f.err = err.Error()
}

// Update handles a message while the form is open.
func (f SettingsForm) Update(msg tea.Msg) (SettingsForm, tea.Cmd, SettingsAction) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			return f, nil, SettingsCancel
		case "ctrl+s":
			return f.trySave()
		case "enter":
			if f.focus != fieldPrompt {
				return f.trySave()
			}
		case "tab":
			f.focus = (f.focus + 1) % fieldCount
			f.applyFocus()
			return f, nil, SettingsNone
		case "shift+tab":
			f.focus = (f.focus + fieldCount - 1) % fieldCount
			f.applyFocus()
			return f, nil, SettingsNone
		case "left", "right", " ":
			if f.focus == fieldModel {
				if km.String() == "left" {
					f.variant = previousVariant(f.variant)
				} else {
					f.variant = f.variant.Next()
				}
				return f, nil, SettingsNone
			}
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldPrompt:
		f.prompt, cmd = f.prompt.Update(msg)
	case fieldTemperature:
		f.temp, cmd = f.temp.Update(msg)
	}
	return f, cmd, SettingsNone
}

func (f SettingsForm) trySave() (SettingsForm, tea.Cmd, SettingsAction) {
	if _, err := f.Settings(); err != nil {
		f.SetError(err)
		return f, nil, SettingsNone
	}
	f.err = ""
	return f, nil, SettingsSave
}

func (f *SettingsForm) applyFocus() {
	f.prompt.Blur()
	f.temp.Blur()
	switch f.focus {
	case fieldPrompt:
		f.prompt.Focus()
	case fieldTemperature:
		f.temp.Focus()
	}
}

func previousVariant(v model.ModelVariant) model.ModelVariant {
	for i, info := range model.Variants {
		if info.Variant == v {
			return model.Variants[(i+len(model.Variants)-1)%len(model.Variants)].Variant
		}
	}
	return model.DefaultModel
}

// View renders the form.
func (f SettingsForm) View() string {
	t := f.Theme
	label := func(field int, text string) string {
		if f.focus == field {
			return t.FieldActive.Render(text)
		}
		return t.FieldLabel.Render(text)
	}

	f.prompt.SetWidth(maxInt(f.Width-8, 20))

	var models []string
	for _, info := range model.Variants {
		if info.Variant == f.variant {
			models = append(models, t.ButtonActive.Render(info.Short))
		} else {
			models = append(models, t.Button.Render(info.Short))
		}
	}

	rows := []string{
		t.ModalTitle.Render("Conversation Settings"),
		label(fieldPrompt, "System prompt"),
		f.prompt.View(),
		"",
		label(fieldTemperature, "Temperature") + f.temp.View() + t.Muted.Render(" (0.0 - 2.0)"),
		"",
		label(fieldModel, "Model") + strings.Join(models, " "),
		t.Muted.Render(f.variant.Label()),
	}
	if f.err != "" {
		rows = append(rows, "", t.ErrorStyle.Render(styles.StatusIndicators.Error+" "+f.err))
	}
	rows = append(rows, "", t.ShortcutDesc.Render("tab next field  ctrl+s save  esc cancel"))

	return t.Modal.Width(f.Width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
