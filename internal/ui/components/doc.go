// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual building blocks of the aura TUI:
// the message history, the conversation sidebar, the status bar, and the
// settings, analytics and confirmation overlays.
//
// Components are plain values rendered from session and directory
// snapshots. Overlays that take input (settings, confirm) expose Update
// methods in the Bubble Tea style; the rest only render.
package components
