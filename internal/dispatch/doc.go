// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch drives one exchange at a time between a session and the
// answering service.
//
// An exchange moves through four states:
//
//	Idle -> Sending -> {Resolved, Failed} -> Idle
//
// Submit appends the user's message immediately and enters Sending. The
// returned Exchange performs the single network request; Run is the only
// blocking call and may execute off the event loop. Resolve appends the
// assistant message and always returns the dispatcher to Idle, whatever
// happened during the request.
//
// Failures never escape: a transport error becomes the apology notice, a
// reply without text becomes the no-reply notice. Causes are logged and,
// optionally, passed to a DiagnosticHook.
//
// A Dispatcher is not safe for concurrent use. Submit and Resolve must be
// called from the goroutine that owns the session (the bubbletea Update loop
// or the REPL loop).
package dispatch
