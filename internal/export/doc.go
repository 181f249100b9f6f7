// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to files.
//
// # Supported Formats
//
//   - Markdown: human-readable with YAML frontmatter
//   - JSON: machine-readable, complete transcript
//   - HTML: standalone page with replies rendered from Markdown
//
// # Usage
//
//	t := export.FromState(sess.Snapshot())
//	exp, err := export.NewExporter(export.FormatMarkdown, nil)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(t, exp, nil)
package export
