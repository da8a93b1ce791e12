// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askterm/internal/ui/styles"
)

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// TypingText follows the spinner while an exchange is pending.
const TypingText = "typing…"

// showElapsedAfter is how long an exchange runs before the indicator shows
// how long it has been waiting.
const showElapsedAfter = 3 * time.Second

// TypingIndicator is the spinner shown while a reply is pending.
type TypingIndicator struct {
	spinner   spinner.Model
	theme     *styles.Theme
	startTime time.Time
	isActive  bool
	now       func() time.Time
}

// NewTypingIndicator creates an inactive indicator. Plain themes get the
// ASCII line spinner.
func NewTypingIndicator(theme *styles.Theme) TypingIndicator {
	s := spinner.New()
	if theme.Plain {
		s.Spinner = styles.LineSpinner.Spinner()
	} else {
		s.Spinner = styles.DotsSpinner.Spinner()
	}
	s.Style = theme.Spinner
	return TypingIndicator{spinner: s, theme: theme, now: time.Now}
}

// Start activates the indicator and returns the first tick.
func (t *TypingIndicator) Start() tea.Cmd {
	t.isActive = true
	t.startTime = t.now()
	return t.spinner.Tick
}

// Stop deactivates the indicator. Pending ticks are dropped by Update.
func (t *TypingIndicator) Stop() {
	t.isActive = false
}

// IsActive returns whether the indicator is running.
func (t *TypingIndicator) IsActive() bool {
	return t.isActive
}

// Elapsed returns the time since Start, or zero when inactive.
func (t *TypingIndicator) Elapsed() time.Duration {
	if !t.isActive || t.startTime.IsZero() {
		return 0
	}
	return t.now().Sub(t.startTime)
}

// Update advances the animation. Ticks arriving while inactive are
// swallowed so the tick loop ends.
func (t TypingIndicator) Update(msg tea.Msg) (TypingIndicator, tea.Cmd) {
	if !t.isActive {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the indicator, or "" when inactive.
func (t TypingIndicator) View() string {
	if !t.isActive {
		return ""
	}
	out := t.theme.AssistantLabel.Render("Assistant") + " " +
		t.spinner.View() + " " + t.theme.Typing.Render(TypingText)

	if elapsed := t.Elapsed(); elapsed >= showElapsedAfter {
		out += t.theme.Timestamp.Render(" (" + elapsed.Truncate(time.Second).String() + ")")
	}
	return out
}
