// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the terminal front ends.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, PadRight: display-width aware layout for CJK and emoji
//   - NormalizeInput: NFC normalization and line-ending cleanup for user text
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	title := util.TruncateWidth(summary.Title, 24)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
