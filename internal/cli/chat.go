// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/askterm/internal/dispatch"
	"github.com/jeranaias/askterm/internal/export"
)

const chatPrompt = "you> "

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader is the part of liner the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// newLiner opens a liner with in-memory history only.
func newLiner() *liner.State {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// =============================================================================
// COMMAND
// =============================================================================

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a line-mode chat session",
		Long: `Starts a line-mode session: type a message and press enter.

Commands:
  /help              Show this help
  /status            Session ID, message count and age
  /history           List the messages so far
  /export [FORMAT]   Write the transcript (md, json or html)
  /quit              Leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateForExchange(); err != nil {
				return err
			}
			line := newLiner()
			defer line.Close()

			r := a.newREPL(line, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return r.run(cmd.Context())
		},
	}
}

// =============================================================================
// REPL
// =============================================================================

// chatREPL is a line-mode session over one dispatcher.
type chatREPL struct {
	app       *app
	d         *dispatch.Dispatcher
	in        lineReader
	out       io.Writer
	exportDir string
}

func (a *app) newREPL(in lineReader, out, stderr io.Writer) *chatREPL {
	return &chatREPL{
		app:       a,
		d:         a.newDispatcher(newTransport(a.cfg, a.log), stderr),
		in:        in,
		out:       out,
		exportDir: ".",
	}
}

// run reads lines until /quit, EOF or ctrl+c.
func (r *chatREPL) run(ctx context.Context) error {
	r.printWelcome()

	for {
		line, err := r.in.Prompt(chatPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(r.out)
			r.printSummary()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.in.AppendHistory(line)

		if strings.HasPrefix(line, "/") {
			if r.command(line) {
				r.printSummary()
				return nil
			}
			continue
		}

		res, ok := r.d.Send(ctx, line)
		if !ok {
			continue
		}
		fmt.Fprintln(r.out, r.app.formatMessage(res.Reply, r.out))
		fmt.Fprintln(r.out)

		if ctx.Err() != nil {
			return nil
		}
	}
}

// command runs a slash command and reports whether the session should end.
func (r *chatREPL) command(line string) bool {
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "/help", "/h", "/?":
		r.printHelp()
	case "/status", "/s":
		r.printStatus()
	case "/history":
		r.printHistory()
	case "/export":
		format := "md"
		if len(args) > 0 {
			format = strings.ToLower(args[0])
		}
		r.export(format)
	case "/quit", "/q", "/exit":
		return true
	default:
		fmt.Fprintf(r.out, "%s unknown command %s (try /help)\n", ErrorStyle.Render("[X]"), name)
	}
	return false
}

func (r *chatREPL) printWelcome() {
	fmt.Fprintln(r.out, TitleStyle.Render(r.app.cfg.UI.Title))
	fmt.Fprintln(r.out, DimStyle.Render("Type /help for commands, /quit to leave."))
	fmt.Fprintln(r.out)

	if greeting, ok := r.d.Session().Transcript().At(0); ok {
		fmt.Fprintln(r.out, r.app.formatMessage(greeting, r.out))
		fmt.Fprintln(r.out)
	}
}

func (r *chatREPL) printHelp() {
	rows := [][2]string{
		{"/help", "Show this help"},
		{"/status", "Session ID, message count and age"},
		{"/history", "List the messages so far"},
		{"/export [md|json|html]", "Write the transcript to the current directory"},
		{"/quit", "Leave"},
	}
	for _, row := range rows {
		fmt.Fprintf(r.out, "  %-24s %s\n", PromptStyle.Render(row[0]), row[1])
	}
}

func (r *chatREPL) printStatus() {
	st := r.d.Session().Status()
	fmt.Fprintln(r.out, RenderLabel("Session", st.SessionID))
	fmt.Fprintln(r.out, RenderLabel("Messages", fmt.Sprintf("%d (%d from you)", st.Messages, st.UserMessages)))
	fmt.Fprintln(r.out, RenderLabel("Started", humanize.Time(st.StartTime)))
	now := time.Now()
	fmt.Fprintln(r.out, RenderLabel("Last active", humanize.RelTime(now.Add(-st.IdleTime), now, "ago", "from now")))
	fmt.Fprintln(r.out, RenderLabel("Last", r.d.LastOutcome().String()))
}

func (r *chatREPL) printHistory() {
	for _, msg := range r.d.Snapshot() {
		label := msg.Role.DisplayName()
		if msg.Kind.IsNotice() {
			label += " (notice)"
		}
		fmt.Fprintf(r.out, "%s %s: %s\n", DimStyle.Render("["+msg.Clock()+"]"), label, msg.Preview(80))
	}
}

func (r *chatREPL) export(format string) {
	opts := export.DefaultOptions()
	opts.OutputDir = r.exportDir
	opts.CodeStyle = r.app.cfg.UI.CodeStyle
	opts.SanitizeHTML = r.app.cfg.Render.SanitizeHTML

	path, err := export.Export(export.FromSession(r.d.Session(), ""), format, opts)
	if err != nil {
		fmt.Fprintf(r.out, "%s export failed: %v\n", ErrorStyle.Render("[X]"), err)
		return
	}
	fmt.Fprintf(r.out, "%s exported to %s\n", SuccessStyle.Render("[OK]"), path)
}

// printSummary is shown on the way out.
func (r *chatREPL) printSummary() {
	st := r.d.Session().Status()
	fmt.Fprintf(r.out, "%s %s, %s\n",
		DimStyle.Render("Session ended:"),
		english.Plural(st.UserMessages, "message", "messages"),
		st.Duration.Round(time.Second))
}
