// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/askterm/internal/config"
	"github.com/jeranaias/askterm/internal/ui/chat"
)

func newTUICommand(a *app) *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen chat (the default)",
		Long: `Starts the full-screen chat. Edits to the config file are picked up
while it runs: title, theme, code style, timestamps and footer change in
place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.tuiExportDir = exportDir
			return a.runTUI(cmd)
		},
	}
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "where ctrl+e writes exports")
	return cmd
}

// runTUI runs the Bubble Tea program and, when a config file is in use, a
// watcher that feeds reloads into it. Both stop when either does.
func (a *app) runTUI(cmd *cobra.Command) error {
	if err := a.cfg.ValidateForExchange(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d := a.newDispatcher(newTransport(a.cfg, a.log), cmd.ErrOrStderr())
	m := chat.New(d, a.cfg,
		chat.WithLogger(a.log),
		chat.WithContext(ctx),
		chat.WithExportDir(a.tuiExportDir),
	)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	g, gctx := errgroup.WithContext(ctx)

	if a.cfgPath != "" {
		g.Go(func() error {
			err := config.Watch(gctx, a.cfgPath, a.log, func(cfg *config.Config, err error) {
				p.Send(chat.ConfigReloadMsg{Config: cfg, Err: err})
			})
			if err != nil {
				a.log.Warn("config watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("chat UI: %w", err)
		}
		return nil
	})

	return g.Wait()
}
