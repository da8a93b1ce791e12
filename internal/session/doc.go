// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the identity and transcript of one conversation.
//
// A session is created when the client starts. Its ID is generated once,
// sent as the user_id of every outbound request, and never changes for the
// life of the process. The transcript is seeded with a greeting.
//
// # Usage
//
//	sess := session.New(cfg.Messages.Greeting)
//	fmt.Println(sess.ID()) // chat_3k9x0q2m1v7z_1718000000000
package session
