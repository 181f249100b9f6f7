// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server implements a development instance of the conversation
// service backed by SQLite.
//
// Endpoints:
//   - GET    /                              - Health check
//   - POST   /conversations                 - Create a conversation
//   - GET    /conversations                 - List conversations, newest first
//   - GET    /conversations/{id}            - Full conversation
//   - PATCH  /conversations/{id}            - Partial update
//   - DELETE /conversations/{id}            - Delete with messages and attachments
//   - POST   /conversations/{id}/messages   - Send a message, returns the reply
//   - POST   /upload?conversation_id={id}   - Multipart file upload
//   - POST   /feedback                      - Rate a message
//   - GET    /analytics                     - Usage summary
//
// Errors are JSON objects with a "detail" field. Sending messages is rate
// limited per client address.
package server
