// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the interactive chat screen.

The Model is a Bubble Tea model wrapping a dispatch.Dispatcher. Everything
that touches the transcript happens inside Update, so the dispatcher needs
no locking. The one slow operation, the round trip to the service, runs as
a tea.Cmd and comes back as an ExchangeResultMsg.

# Layout

From top to bottom:
  - Header: title, message count, session ID
  - Transcript viewport, followed by the typing indicator while a reply is pending
  - Status line: the current toast, or key help
  - Input area with the send button
  - Footer notice

The viewport gets whatever height is left after the other rows are measured.

# Keys

  - enter: send
  - alt+enter, ctrl+j: newline
  - pgup, pgdown, ctrl+home, ctrl+end: scroll
  - ctrl+y: copy the last reply
  - ctrl+e: export the transcript to Markdown
  - esc, ctrl+c: quit

# Usage

	d := dispatch.New(session.New(cfg.Messages.Greeting), client.New(cfg.Transport.Endpoint))
	p := tea.NewProgram(chat.New(d, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
*/
package chat
