// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller implements the user-facing chat operations on top of a
// session, a directory and a transport.
//
// Each operation validates its preconditions against the session, issues
// the transport calls it needs and settles the result back into the
// session. The rules it enforces:
//
//   - A send appends the user message before any network call and always
//     settles with exactly one assistant reply or one system notice.
//   - The first send or upload on an empty session creates the conversation.
//     Concurrent first actions share one creation call.
//   - Results that arrive after the user switched conversations are
//     discarded; the switch also cancels their requests.
//   - Send and regenerate failures are reported in the chat history. Upload,
//     feedback, settings and delete failures are returned and logged and
//     leave the session unchanged.
//   - Directory refreshes run in the background and never block or fail an
//     operation.
//
// # Usage
//
//	ctl := controller.New(client, session.New(), directory.New(),
//	    controller.WithConfirmer(prompt),
//	    controller.WithLogger(log.Logger))
//	if err := ctl.SendMessage(ctx, "Explain quantum physics"); err != nil {
//	    // ErrEmptyMessage or session.ErrBusy
//	}
package controller
