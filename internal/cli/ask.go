// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/askterm/internal/dispatch"
	"github.com/jeranaias/askterm/internal/model"
	"github.com/jeranaias/askterm/internal/render"
)

// askResult is the --json output of ask.
type askResult struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	Reply     string `json:"reply"`
	Status    string `json:"status"`
}

func newAskCommand(a *app) *cobra.Command {
	var (
		jsonOut bool
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask one question and print the reply",
		Long: `Starts a new session, sends one question and prints the reply.

The reply is rendered when stdout is a terminal and printed raw otherwise.
A failed exchange prints the apology and still exits 0 unless --strict is
given.`,
		Example: `  askterm ask "What are your opening hours?"
  askterm ask --json "Show me a table" | jq .reply`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, strings.Join(args, " "), jsonOut, strict)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print {session_id, query, reply, status} as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the exchange fails")
	return cmd
}

func (a *app) runAsk(cmd *cobra.Command, query string, jsonOut, strict bool) error {
	if err := a.cfg.ValidateForExchange(); err != nil {
		return err
	}

	d := a.newDispatcher(newTransport(a.cfg, a.log), cmd.ErrOrStderr())
	res, ok := d.Send(cmd.Context(), query)
	if !ok {
		return NewUsageError("question is blank")
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(askResult{
			SessionID: d.Session().ID(),
			Query:     res.User.Text,
			Reply:     res.Reply.Text,
			Status:    res.State.String(),
		}); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	} else {
		fmt.Fprintln(out, a.formatMessage(res.Reply, out))
	}

	if strict && res.State == dispatch.StateFailed {
		return &ExchangeError{SessionID: d.Session().ID(), Err: res.Err}
	}
	return nil
}

// formatMessage renders an assistant message for line output. Replies are
// rendered as Markdown on a terminal; notices are styled text.
func (a *app) formatMessage(msg model.Message, w io.Writer) string {
	if !isTerminal(w) {
		return msg.Text
	}
	if msg.Kind.IsNotice() {
		return NoticeStyle.Render(msg.Text)
	}

	width := a.cfg.Render.WrapWidth
	if width <= 0 {
		width = terminalWidth(w)
	}
	f := render.NewTerminalFormatter(render.TerminalOptions{
		Width:       width,
		Theme:       a.cfg.UI.Theme,
		CodeStyle:   a.cfg.UI.CodeStyle,
		LineNumbers: a.cfg.UI.LineNumbers,
	})
	return strings.TrimRight(f.Format(render.New().WithLogger(a.log).Render(msg.Text)), "\n")
}
