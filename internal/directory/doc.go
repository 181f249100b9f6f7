// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package directory caches the ordered list of conversation summaries shown
// in the sidebar and by the list command.
//
// The directory is a cache: it is refreshed after creates and deletes and
// never reasoned about for consistency. A refresh that completes after a
// newer one has been applied is dropped so the list never moves backward.
package directory
