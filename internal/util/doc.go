// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the askterm packages.
//
// # Key Functions
//
// Text:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: display-width truncation (CJK and emoji aware)
//   - PadRight: pad to a display width
//   - RedactSecret: mask credentials before they are printed
//
// Files:
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - ExpandHome: resolve a leading ~ to the user's home directory
//
// # Usage
//
//	label := util.TruncateWidth(title, 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
