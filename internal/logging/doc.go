// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide zerolog logger.
//
// Output goes to a rotating file (lumberjack) and, unless the terminal UI
// owns the screen, to stderr as well. The console uses zerolog's
// ConsoleWriter in "text" format and raw JSON lines in "json" format; the
// file always receives uncolored text or JSON according to the same format.
package logging
