// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askterm/internal/util"
)

const sendLabel = "Send"

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen: header, transcript, status line, input
// and footer, top to bottom.
func (m Model) View() string {
	parts := []string{
		m.renderHeader(),
		m.viewport.View(),
		m.renderStatus(),
		m.renderInput(),
	}
	if footer := m.renderFooter(); footer != "" {
		parts = append(parts, footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	sess := m.dispatcher.Session()
	m.header.SessionID = sess.ID()
	m.header.Messages = sess.Transcript().Len()
	m.header.Status = ""
	if m.dispatcher.Pending() {
		m.header.Status = "waiting for reply"
	}
	return m.header.View()
}

// renderStatus shows the current toast, or key help when there is none.
func (m Model) renderStatus() string {
	if m.toast != nil {
		return m.toast.Render(m.theme, m.width)
	}
	return m.help.ShortHelpView(m.keyMap.ShortHelp())
}

func (m Model) renderInput() string {
	row := lipgloss.JoinHorizontal(lipgloss.Bottom, m.input.View(), " ", m.renderSendButton())
	return m.theme.InputContainer.Render(row)
}

// renderSendButton dims the button while nothing can be sent.
func (m Model) renderSendButton() string {
	if m.canSend() {
		return m.theme.SendButton.Render(sendLabel)
	}
	return m.theme.SendDisabled.Render(sendLabel)
}

func (m Model) canSend() bool {
	return strings.TrimSpace(m.input.Value()) != "" && !m.dispatcher.Pending()
}

func (m Model) renderFooter() string {
	if m.footer == "" {
		return ""
	}
	return m.theme.Footer.Width(m.width).Render(util.TruncateWidth(m.footer, m.width))
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes the input and gives the transcript whatever height the
// other rows leave over.
func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)
	m.header.SetWidth(m.width)
	m.help.Width = m.width

	button := lipgloss.Width(m.theme.SendButton.Render(sendLabel))
	m.input.SetWidth(max(m.width-button-1, 10))

	chrome := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderStatus()) +
		lipgloss.Height(m.renderInput())
	if footer := m.renderFooter(); footer != "" {
		chrome += lipgloss.Height(footer)
	}

	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 1)
	m.transcriptDirty = true
	m.refresh(true)
}

// refresh updates the viewport content. The transcript is re-rendered only
// when it grew, the width changed or the styling was replaced; the typing
// line is appended on every call. The view follows new output, and keeps
// its position while the user has scrolled up.
func (m *Model) refresh(gotoBottom bool) {
	n := m.dispatcher.Session().Transcript().Len()
	if m.transcriptDirty || n != m.renderedCount || m.width != m.renderedWidth {
		m.list.SetWidth(m.width)
		m.list.SetMessages(m.dispatcher.Snapshot())
		m.transcriptView = m.list.View()
		m.renderedCount = n
		m.renderedWidth = m.width
		m.transcriptDirty = false
		gotoBottom = true
	}

	content := m.transcriptView
	if typing := m.typing.View(); typing != "" {
		content += "\n\n" + typing
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(content)
	if gotoBottom || atBottom {
		m.viewport.GotoBottom()
	}
}
