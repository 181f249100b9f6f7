// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the state of the single conversation currently open
// in the client.
//
// A Session is either empty (no identity), identified with history, or
// mid-exchange. All mutation goes through mutex-guarded methods so that
// results arriving on background goroutines never race with user actions.
//
// # Generations and Tickets
//
// Every Open or Reset starts a new generation. Work that outlives a user
// action (a send, an upload, a feedback call) holds a Ticket bound to the
// generation it was issued under. When the generation moves on, the
// ticket's context is cancelled and its mutations become no-ops:
//
//	ticket, err := sess.Acquire(ctx, session.GuardUpload)
//	if err != nil {
//	    return err // session.ErrBusy
//	}
//	defer ticket.Release()
//	att, err := client.UploadFile(ticket.Context(), ...)
//	ticket.AddAttachment(*att) // false if the user switched away
//
// # Exchanges
//
// Send and regenerate are two-phase. BeginSend and BeginRegenerate apply
// the tentative change immediately (optimistic user message, discarded
// assistant reply). Complete or Fail then settles the exchange by appending
// exactly one message and releasing the busy guard.
//
// # Identity
//
// The conversation id moves from absent to present exactly once per
// generation. SetID and Ticket.Bind enforce that transition and return
// ErrAlreadyIdentified for any other.
package session
