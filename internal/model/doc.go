// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and messages.
//
// # Key Types
//
//   - Message: a single immutable entry with role, kind, text and timestamp
//   - Role: who authored a message (user or assistant)
//   - Kind: why a message exists (greeting, reply, notice, user input)
//   - Transcript: the append-only, ordered record of one session
//
// # Usage
//
//	t := model.NewTranscript()
//	t.Append(model.NewUserMessage("Hello!"))
//	for _, msg := range t.Snapshot() {
//	    fmt.Println(msg.Role.DisplayName(), msg.Text)
//	}
package model
