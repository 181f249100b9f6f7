// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// textExtensions are decoded as UTF-8 text.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".json": true, ".log": true,
	".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".go": true, ".css": true, ".html": true, ".yaml": true, ".yml": true, ".toml": true,
}

// ExtractText turns an uploaded file into the text used as reply context.
// Text files keep their content; images and other binaries get a
// descriptive placeholder.
func ExtractText(filename string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType := http.DetectContentType(data)

	switch {
	case strings.HasPrefix(contentType, "image/"):
		return fmt.Sprintf("[Image: %s, %s, %d bytes]", filename, contentType, len(data))
	case textExtensions[ext] && utf8.Valid(data):
		text := strings.ReplaceAll(string(data), "\r\n", "\n")
		return norm.NFC.String(text)
	case ext == "" && strings.HasPrefix(contentType, "text/") && utf8.Valid(data):
		return norm.NFC.String(string(data))
	}
	return "[Binary/Unsupported file content - Name: " + filename + "]"
}
