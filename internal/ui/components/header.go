// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askterm/internal/ui/styles"
	"github.com/jeranaias/askterm/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar. The title sits on the left; session and status
// details sit on the right and are dropped first when space runs out.
type Header struct {
	Title     string
	SessionID string
	Messages  int
	Status    string
	Width     int
	theme     *styles.Theme
}

// NewHeader creates a new Header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "askterm",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetTitle updates the title. A blank title keeps the current one.
func (h *Header) SetTitle(title string) {
	if strings.TrimSpace(title) != "" {
		h.Title = title
	}
}

// meta returns the right-hand details.
func (h *Header) meta() string {
	var parts []string
	if h.Status != "" {
		parts = append(parts, h.Status)
	}
	if h.Messages > 0 {
		noun := " messages"
		if h.Messages == 1 {
			noun = " message"
		}
		parts = append(parts, strconv.Itoa(h.Messages)+noun)
	}
	if h.SessionID != "" {
		parts = append(parts, util.TruncateRunes(h.SessionID, 18))
	}
	return strings.Join(parts, " · ")
}

// View renders the header on one line inside the header frame.
func (h *Header) View() string {
	width := max(h.Width, 20)
	style := h.theme.Header
	inner := max(width-style.GetHorizontalFrameSize(), 1)

	title := util.TruncateWidth(h.Title, inner)
	line := h.theme.HeaderTitle.Render(title)

	if meta := h.meta(); meta != "" {
		gap := inner - lipgloss.Width(title) - 2
		if gap >= 8 {
			meta = util.TruncateWidth(meta, gap)
			pad := inner - lipgloss.Width(title) - lipgloss.Width(meta)
			line += strings.Repeat(" ", pad) + h.theme.HeaderMeta.Render(meta)
		}
	}

	return style.Render(line)
}
