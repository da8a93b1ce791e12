// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/askterm/internal/model"
	"github.com/jeranaias/askterm/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages. It is the only place the transcript changes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ExchangeResultMsg:
		return m.handleExchangeResult(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.typing, cmd = m.typing.Update(msg)
		if m.typing.IsActive() {
			m.refresh(false)
		}
		return m, cmd

	case ConfigReloadMsg:
		return m.handleConfigReload(msg)

	case copyDoneMsg:
		if msg.err != nil {
			m.log.Warn("clipboard write failed", zap.Error(msg.err))
			return m.showToast(components.NewErrorToast("Copy failed: " + msg.err.Error()))
		}
		return m.showToast(components.NewSuccessToast("Copied " + strconv.Itoa(msg.chars) + " characters"))

	case exportDoneMsg:
		return m.handleExportDone(msg)

	case components.ToastExpiredMsg:
		if m.toast != nil && m.toast.ID == msg.ID {
			m.toast = nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey routes key presses. Anything unbound goes to the input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Newline):
		m.input.InsertString("\n")
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.Bottom):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keyMap.Copy):
		return m.handleCopy()

	case key.Matches(msg, m.keyMap.Export):
		return m.handleExport()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// EXCHANGE HANDLERS
// =============================================================================

// submit hands the input to the dispatcher. A refused submit (blank input
// or an exchange already pending) leaves the input as typed.
func (m Model) submit() (tea.Model, tea.Cmd) {
	ex, ok := m.dispatcher.Submit(m.input.Value())
	if !ok {
		return m, nil
	}

	m.input.Reset()
	tick := m.typing.Start()
	m.refresh(true)
	return m, tea.Batch(runExchange(m.ctx, ex), tick)
}

// handleExchangeResult resolves a finished exchange.
func (m Model) handleExchangeResult(msg ExchangeResultMsg) (tea.Model, tea.Cmd) {
	if _, ok := m.dispatcher.Resolve(msg.Exchange, msg.Outcome); !ok {
		return m, nil
	}
	m.typing.Stop()
	m.refresh(true)
	return m, nil
}

// =============================================================================
// ACTION HANDLERS
// =============================================================================

// handleCopy copies the most recent reply from the service. Greetings and
// notices are never copied.
func (m Model) handleCopy() (tea.Model, tea.Cmd) {
	msgs := m.dispatcher.Snapshot()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Kind == model.KindReply {
			return m, copyText(m.clip, msgs[i].Text)
		}
	}
	return m.showToast(components.NewErrorToast("Nothing to copy yet"))
}

// handleConfigReload applies a reloaded configuration.
func (m Model) handleConfigReload(msg ConfigReloadMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil || msg.Config == nil {
		m.log.Warn("config reload rejected", zap.Error(msg.Err))
		return m.showToast(components.NewErrorToast("Config not reloaded"))
	}

	tick := m.applyConfig(msg.Config)
	m.layout()
	m.log.Info("config reloaded", zap.String("theme", m.replies.Theme()))

	next, expire := m.showToast(components.NewSuccessToast("Config reloaded"))
	return next, tea.Batch(tick, expire)
}

// showToast replaces the current toast.
func (m Model) showToast(t components.Toast) (tea.Model, tea.Cmd) {
	m.toast = &t
	return m, t.Expire()
}
