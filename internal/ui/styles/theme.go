// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the chat view.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile
	// Plain drops borders and colors (notty and ascii render themes).
	Plain bool

	// Layout dimensions
	Width  int
	Height int

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	// Transcript
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	NoticeBubble    lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	Timestamp       lipgloss.Style
	EmptyState      lipgloss.Style
	Typing          lipgloss.Style
	Spinner         lipgloss.Style

	// Input area
	InputContainer lipgloss.Style
	SendButton     lipgloss.Style
	SendDisabled   lipgloss.Style

	// Footer and status
	Footer    lipgloss.Style
	StatusBar lipgloss.Style
	Toast     lipgloss.Style
	ToastErr  lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// NewPlainTheme creates a theme without borders or colors.
func NewPlainTheme() *Theme {
	t := &Theme{ColorProfile: termenv.Ascii, Plain: true}
	t.initPlainStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.NoticeBubble = lipgloss.NewStyle().
		Foreground(NoticeBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(NoticeBubbleBorder).
		Padding(0, 1)

	t.UserLabel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)

	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Align(lipgloss.Center)

	t.Typing = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.SendButton = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 1)

	t.SendDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(OverlayDim).
		Padding(0, 1)

	t.Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Align(lipgloss.Center)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.Toast = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.ToastErr = lipgloss.NewStyle().Foreground(Rose).Bold(true)
}

func (t *Theme) initPlainStyles() {
	plain := lipgloss.NewStyle()
	t.Header = plain
	t.HeaderTitle = plain.Bold(true)
	t.HeaderMeta = plain
	t.UserBubble = plain.PaddingLeft(2)
	t.AssistantBubble = plain.PaddingLeft(2)
	t.NoticeBubble = plain.PaddingLeft(2)
	t.UserLabel = plain.Bold(true)
	t.AssistantLabel = plain.Bold(true)
	t.Timestamp = plain
	t.EmptyState = plain.Align(lipgloss.Center)
	t.Typing = plain
	t.Spinner = plain
	t.InputContainer = plain.BorderStyle(lipgloss.NormalBorder()).BorderTop(true)
	t.SendButton = plain.Bold(true)
	t.SendDisabled = plain
	t.Footer = plain.Align(lipgloss.Center)
	t.StatusBar = plain
	t.Toast = plain
	t.ToastErr = plain.Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleWidth is the outer width of a message bubble: most of the window,
// leaving room to show which side a turn sits on.
func (t *Theme) BubbleWidth() int {
	return BubbleWidthFor(t.Width)
}

// BubbleWidthFor is BubbleWidth for an arbitrary window width.
func BubbleWidthFor(width int) int {
	switch LayoutModeFor(width) {
	case LayoutNarrow:
		return max(width-2, 10)
	case LayoutMedium:
		return width * 85 / 100
	default:
		return width * 3 / 4
	}
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	return LayoutModeFor(t.Width)
}

// LayoutModeFor returns the layout mode for a window width.
func LayoutModeFor(width int) LayoutMode {
	if width < 60 {
		return LayoutNarrow
	}
	if width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
