// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askterm/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindSuccess reports a completed action such as a copy or export.
	ToastKindSuccess ToastKind = iota
	// ToastKindError reports a local action that failed.
	ToastKindError
)

// DefaultToastDuration is the auto-dismiss duration for success toasts.
const DefaultToastDuration = 3 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts.
const ErrorToastDuration = 6 * time.Second

var toastSeq atomic.Int64

// Toast is a one-line notification shown above the input. Toasts never
// enter the transcript.
type Toast struct {
	ID       int64
	Message  string
	Kind     ToastKind
	Duration time.Duration
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(message string) Toast {
	return Toast{ID: toastSeq.Add(1), Message: message, Kind: ToastKindSuccess, Duration: DefaultToastDuration}
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return Toast{ID: toastSeq.Add(1), Message: message, Kind: ToastKindError, Duration: ErrorToastDuration}
}

// ToastExpiredMsg is delivered when a toast's duration has passed.
type ToastExpiredMsg struct {
	ID int64
}

// Expire returns a command that reports the toast as expired after its
// duration. A newer toast has a different ID, so late expiries are ignored.
func (t Toast) Expire() tea.Cmd {
	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Render draws the toast truncated to width.
func (t Toast) Render(theme *styles.Theme, width int) string {
	style := theme.Toast
	icon := styles.StatusIndicators.Success
	if t.Kind == ToastKindError {
		style = theme.ToastErr
		icon = styles.StatusIndicators.Error
	}
	return style.Render(fitWidth(icon+" "+t.Message, max(width, 1)))
}
