// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/askterm/internal/export"
	"github.com/jeranaias/askterm/internal/ui/components"
)

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// handleExport snapshots the transcript on the loop and writes it to
// Markdown in the background.
func (m Model) handleExport() (tea.Model, tea.Cmd) {
	snap := export.FromSession(m.dispatcher.Session(), m.title)

	opts := export.DefaultOptions()
	opts.OutputDir = m.exportDir
	opts.CodeStyle = m.replies.Options().CodeStyle

	return m, func() tea.Msg {
		path, err := export.Export(snap, "md", opts)
		return exportDoneMsg{path: path, err: err}
	}
}

// handleExportDone shows the export result.
func (m Model) handleExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn("export failed", zap.Error(msg.err))
		return m.showToast(components.NewErrorToast("Export failed: " + msg.err.Error()))
	}
	m.log.Info("exported transcript", zap.String("path", msg.path))
	return m.showToast(components.NewSuccessToast("Exported to " + msg.path))
}
