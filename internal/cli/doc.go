// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the aura command line.

Running aura with no subcommand opens the terminal UI. The other commands
are:

	aura chat                      line-oriented chat with history and slash commands
	aura ask "question"            send one message and print the reply
	aura list                      list conversations
	aura show ID                   print a conversation transcript
	aura delete ID [--yes]         delete a conversation
	aura export ID [--format F]    write a transcript file (markdown, json, html)
	aura analytics [--json]        usage summary
	aura serve                     run the development service on SQLite
	aura config show|path|init|get|set

Settings resolve in order: configuration file, then AURA_* environment
variables, then the global flags (--config, --base-url, --log-level,
--log-file).
*/
package cli
