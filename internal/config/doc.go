// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for aura.
//
// Configuration is read from ~/.aura/config.toml, filled with defaults for
// anything missing, overridden by AURA_* environment variables and then
// validated. Command-line flags are applied on top by the cli package.
//
// # Sections
//
//   - server: base URL, timeout and client-side pacing for the service
//   - chat: confirmation and REPL behavior
//   - ui: theme, Markdown rendering and layout of the terminal UI
//   - log: level, format and file of the application log
//   - serve: listen address, database and limits of the development server
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := api.NewClient(cfg.Server.BaseURL).WithTimeout(cfg.Server.Timeout())
//
// Dot notation reads and writes individual keys:
//
//	_ = cfg.Set("ui.theme", "light")
//	theme, _ := cfg.Get("ui.theme")
package config
