// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the current conversation to a file.
//
// Exports are one-way: nothing in askterm reads an exported file back, and
// a session is never restored from one.
//
// # Key Types
//
//   - Snapshot: the transcript and session details being exported
//   - Exporter: converts a Snapshot to bytes in one format
//   - Options: output directory and what to include
//
// # Supported Formats
//
//   - Markdown: readable, with YAML front matter
//   - JSON: machine-readable, messages as stored
//   - HTML: standalone page, replies rendered with highlighted code
//
// # Usage
//
//	snap := export.FromSession(sess, "askterm")
//	path, err := export.Export(snap, "md", export.DefaultOptions())
package export
