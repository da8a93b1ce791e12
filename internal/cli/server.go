// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/askterm/internal/server"
)

// mockServerOptions are the mock-server flags.
type mockServerOptions struct {
	addr   string
	field  string
	status int
	delay  time.Duration
	token  string
}

func newMockServerCommand(a *app) *cobra.Command {
	var opts mockServerOptions

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run a local answering service for development",
		Long: `Runs a local answering service. POST / and POST /api/chat accept
{"query", "user_id"} and answer with a Markdown echo of the query in the
chosen reply field. GET /health and GET /stats report on the server.`,
		Example: `  askterm mock-server --addr 127.0.0.1:8787
  askterm mock-server --field none        # replies carry no text
  askterm mock-server --status 503        # every exchange fails
  askterm --endpoint http://127.0.0.1:8787/ ask "hello"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMockServer(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	flags.StringVar(&opts.field, "field", "answer", "reply field: answer, message, text or none")
	flags.IntVar(&opts.status, "status", 0, "force this HTTP status on every answer")
	flags.DurationVar(&opts.delay, "delay", 0, "added latency per answer")
	flags.StringVar(&opts.token, "token", "", "require this bearer token")
	return cmd
}

func (a *app) runMockServer(cmd *cobra.Command, opts mockServerOptions) error {
	if !server.ValidField(opts.field) {
		return NewUsageError("--field must be answer, message, text or none, got %q", opts.field)
	}

	s := server.NewServer(opts.addr).
		WithReplyField(opts.field).
		WithStatus(opts.status).
		WithDelay(opts.delay).
		WithToken(opts.token).
		WithLogger(a.log)
	if err := s.Validate(); err != nil {
		return NewUsageError("%v", err)
	}

	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s mock answering service on http://%s/ (field %s)\n",
		SuccessStyle.Render("[OK]"), ln.Addr(), opts.field)
	a.log.Info("mock server started", zap.String("addr", ln.Addr().String()), zap.String("field", opts.field))

	return s.ServeListener(cmd.Context(), ln)
}
