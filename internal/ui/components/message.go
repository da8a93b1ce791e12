// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askterm/internal/model"
	"github.com/jeranaias/askterm/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// EmptyStateText is shown when the transcript has no messages.
const EmptyStateText = "Start a conversation..."

// MessageBubble represents a styled message bubble.
type MessageBubble struct {
	Message       model.Message
	Width         int
	ShowTimestamp bool
	theme         *styles.Theme
	replies       *ReplyRenderer
}

// NewMessageBubble creates a new MessageBubble. replies renders assistant
// text; when nil, assistant text is wrapped as plain text.
func NewMessageBubble(msg model.Message, theme *styles.Theme, replies *ReplyRenderer) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
		replies:       replies,
	}
}

// SetWidth sets the width of the area the bubble is placed in.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	switch {
	case b.Message.Role == model.RoleUser:
		return b.renderUserBubble()
	case b.Message.Kind.IsNotice():
		return b.renderNoticeBubble()
	default:
		return b.renderAssistantBubble()
	}
}

// ==========================================================================
// USER BUBBLE - right-aligned, plain text
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	style := b.theme.UserBubble
	wrapped := wordWrap(orPlaceholder(b.Message.Text), b.contentWidth(style))

	header := b.header(b.theme.UserLabel)
	block := lipgloss.JoinVertical(lipgloss.Right, header, style.Render(wrapped))
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
}

// ==========================================================================
// ASSISTANT BUBBLE - left-aligned, rendered markdown
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	style := b.theme.AssistantBubble
	width := b.contentWidth(style)

	var content string
	if b.replies != nil {
		content = b.replies.Render(orPlaceholder(b.Message.Text), width)
	} else {
		content = wordWrap(orPlaceholder(b.Message.Text), width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, b.header(b.theme.AssistantLabel), style.Render(content))
}

// ==========================================================================
// NOTICE BUBBLE - locally generated stand-in for a reply
// ==========================================================================

func (b *MessageBubble) renderNoticeBubble() string {
	style := b.theme.NoticeBubble
	wrapped := wordWrap(orPlaceholder(b.Message.Text), b.contentWidth(style))
	return lipgloss.JoinVertical(lipgloss.Left, b.header(b.theme.AssistantLabel), style.Render(wrapped))
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

// contentWidth is the text width inside a bubble drawn with style.
func (b *MessageBubble) contentWidth(style lipgloss.Style) int {
	outer := min(styles.BubbleWidthFor(b.Width), b.Width)
	return max(outer-style.GetHorizontalFrameSize(), 1)
}

// header renders the role label and, when enabled, the HH:MM timestamp.
func (b *MessageBubble) header(label lipgloss.Style) string {
	parts := []string{label.Render(b.Message.Role.DisplayName())}
	if b.ShowTimestamp && !b.Message.Timestamp.IsZero() {
		parts = append(parts, b.theme.Timestamp.Render(b.Message.Clock()))
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// MESSAGE LIST COMPONENT - For rendering multiple messages
// =============================================================================

// MessageList represents a list of message bubbles.
type MessageList struct {
	Messages       []model.Message
	Width          int
	ShowTimestamps bool
	theme          *styles.Theme
	replies        *ReplyRenderer
}

// NewMessageList creates a new MessageList.
func NewMessageList(theme *styles.Theme, replies *ReplyRenderer) *MessageList {
	return &MessageList{
		Width:          80,
		ShowTimestamps: true,
		theme:          theme,
		replies:        replies,
	}
}

// SetMessages sets the messages to display.
func (ml *MessageList) SetMessages(messages []model.Message) {
	ml.Messages = messages
}

// SetWidth sets the list width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// View renders all messages in order, separated by a blank line.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		return ml.theme.EmptyState.Width(ml.Width).Render(EmptyStateText)
	}

	bubbles := make([]string, 0, len(ml.Messages))
	for _, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme, ml.replies)
		bubble.SetWidth(ml.Width)
		bubble.ShowTimestamp = ml.ShowTimestamps
		bubbles = append(bubbles, bubble.View())
	}
	return strings.Join(bubbles, "\n\n")
}
