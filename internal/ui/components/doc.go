// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual pieces of the askterm chat view.

# Components

Header (header.go) - Title bar with the session and exchange status.
MessageBubble (message.go) - One transcript entry. User turns sit on the
right as plain wrapped text; assistant turns sit on the left and are
rendered as markdown. Notices (no reply, apology) use their own style.
MessageList (message.go) - The whole transcript, or the empty state.
ReplyRenderer (markdown.go) - Markdown-to-terminal rendering with a cache
keyed by text and width.
TypingIndicator (typing.go) - Spinner shown while an exchange is pending.
Toast (toast.go) - Short-lived status line for copy and export results.

All components take a *styles.Theme:

	theme := styles.NewTheme()
	replies := components.NewReplyRenderer(render.New(), render.TerminalOptions{})
	list := components.NewMessageList(theme, replies)
	list.SetWidth(80)
	list.SetMessages(dispatcher.Snapshot())
	view := list.View()
*/
package components
