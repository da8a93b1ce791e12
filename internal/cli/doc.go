// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the askterm command tree on cobra.
//
// # Commands
//
//   - (none), tui: full-screen chat
//   - ask: one question, one reply; --json and --strict for scripts
//   - chat: line-mode session with /help, /status, /history, /export, /quit
//   - render: run Markdown through the reply pipeline
//   - mock-server: local answering service for development
//   - config: show, path, init, get, set, keys
//   - version
//
// Every command except version and the config file helpers loads the
// configuration first: .env in the working directory, then the config file,
// then ASKTERM_* variables, then --endpoint and --token.
//
// # Exit codes
//
// Errors are returned to main, which prints them and exits with ExitCode:
// 2 for usage errors, 3 for invalid configuration, 5 for a failed exchange
// under ask --strict, 1 otherwise.
package cli
