// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askterm/internal/config"
	"github.com/jeranaias/askterm/internal/dispatch"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ExchangeResultMsg carries the outcome of an exchange back to the loop,
// where it is resolved.
type ExchangeResultMsg struct {
	Exchange *dispatch.Exchange
	Outcome  dispatch.Outcome
}

// ConfigReloadMsg delivers a reloaded configuration. Only the [ui] and
// [render] sections are applied to a running view.
type ConfigReloadMsg struct {
	Config *config.Config
	Err    error
}

// copyDoneMsg reports a clipboard write.
type copyDoneMsg struct {
	chars int
	err   error
}

// exportDoneMsg reports a transcript export.
type exportDoneMsg struct {
	path string
	err  error
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// runExchange runs ex off the event loop. It is the only place the view
// waits on the network.
func runExchange(ctx context.Context, ex *dispatch.Exchange) tea.Cmd {
	return func() tea.Msg {
		return ExchangeResultMsg{Exchange: ex, Outcome: ex.Run(ctx)}
	}
}

// copyText writes text to the clipboard.
func copyText(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return copyDoneMsg{chars: len([]rune(text)), err: write(text)}
	}
}
