// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat screen of the aura TUI.

The screen has three focus areas, cycled with Tab:

  - the input box, where Enter sends and Alt+Enter inserts a newline
  - the history, where a message can be selected, rated (+/-) and copied (y)
  - the conversation sidebar, where Enter opens and d deletes a conversation

Overlays cover the body for the settings form (Ctrl+S), the analytics
dashboard (Ctrl+A), file upload (Ctrl+O) and delete confirmation.

# Wiring

Every operation runs on the controller inside a tea.Cmd. State flows back
through a Bridge, which forwards session and directory notifications and
serves as the controller's delete confirmation:

	bridge := chat.NewBridge()
	ctrl := controller.New(client, session.New(), directory.New(),
		controller.WithConfirmer(bridge))
	p := tea.NewProgram(chat.New(ctx, ctrl, chat.OptionsFromConfig(cfg)), tea.WithAltScreen())
	bridge.Attach(p.Send)
	defer bridge.Watch(ctrl.Session(), ctrl.Directory())()
	_, err := p.Run()
*/
package chat
