// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/askterm/internal/render"
)

func newRenderCommand(a *app) *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "render [FILE]",
		Short: "Render a Markdown file the way replies are rendered",
		Long: `Renders FILE (or stdin when FILE is omitted or "-") through the same
pipeline replies go through. Output is styled text on a terminal, plain
text when piped, or an HTML fragment with --html.`,
		Example: `  askterm render notes.md
  cat reply.md | askterm render --html > reply.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, args, asHTML)
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "emit an HTML fragment")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, args []string, asHTML bool) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		in := cmd.InOrStdin()
		if isInteractive(in) {
			return NewUsageError("render: pass a FILE or pipe Markdown on stdin")
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	doc := render.New().WithLogger(a.log).Render(string(data))
	out := cmd.OutOrStdout()

	if asHTML {
		f := render.NewHTMLFormatter(render.HTMLOptions{
			CodeStyle: a.cfg.UI.CodeStyle,
			Sanitize:  a.cfg.Render.SanitizeHTML,
		})
		_, err := io.WriteString(out, f.Format(doc))
		return err
	}

	theme, width := a.cfg.UI.Theme, a.cfg.Render.WrapWidth
	if !isTerminal(out) {
		theme = render.ThemeNoTTY
	}
	if width <= 0 {
		width = terminalWidth(out)
	}
	f := render.NewTerminalFormatter(render.TerminalOptions{
		Width:       width,
		Theme:       theme,
		CodeStyle:   a.cfg.UI.CodeStyle,
		LineNumbers: a.cfg.UI.LineNumbers,
	})
	_, err = io.WriteString(out, f.Format(doc))
	return err
}
