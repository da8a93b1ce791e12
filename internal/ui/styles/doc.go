// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the askterm TUI.
//
// Colors are lipgloss AdaptiveColors so one palette serves light and dark
// terminals. Theme bundles the styles the chat view needs; it is rebuilt
// when the configured theme changes.
//
// # Usage
//
//	theme := styles.NewTheme()
//	theme.SetSize(width, height)
//	bubble := theme.AssistantBubble.Width(theme.BubbleWidth()).Render(text)
package styles
