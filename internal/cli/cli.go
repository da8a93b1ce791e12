// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/askterm/internal/client"
	"github.com/jeranaias/askterm/internal/config"
	"github.com/jeranaias/askterm/internal/dispatch"
	"github.com/jeranaias/askterm/internal/logging"
	"github.com/jeranaias/askterm/internal/session"
	"github.com/jeranaias/askterm/internal/util"
)

// Version information (set at build time via -ldflags -X).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// annotationNoSetup marks commands that run without loading the config.
const annotationNoSetup = "askterm/no-setup"

// =============================================================================
// GLOBAL STATE
// =============================================================================

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	verbose    bool
	endpoint   string
	token      string
}

// app is what every command gets after flag parsing.
type app struct {
	opts globalOptions

	cfg     *config.Config
	cfgPath string // file the config was read from; "" when running on defaults
	log     *zap.Logger

	tuiExportDir string
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the askterm command tree.
func NewRootCommand() *cobra.Command {
	a := &app{log: logging.Nop(), tuiExportDir: "."}

	root := &cobra.Command{
		Use:   "askterm",
		Short: "Terminal client for a conversational answering service",
		Long: `askterm talks to an HTTP answering service: each message is posted as
{"query", "user_id"} and the reply is rendered as Markdown, with tables and
highlighted code blocks.

Run without a subcommand to start the full-screen chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoSetup] != "" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.configPath, "config", "c", "", "config file (default ~/.askterm/config.toml)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "debug logging and failure details on stderr")
	flags.StringVar(&a.opts.endpoint, "endpoint", "", "answering service URL (overrides config)")
	flags.StringVar(&a.opts.token, "token", "", "bearer token (overrides config)")

	root.AddCommand(
		newTUICommand(a),
		newAskCommand(a),
		newChatCommand(a),
		newRenderCommand(a),
		newMockServerCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads .env, the config file and the flag overrides, then builds
// the logger.
func (a *app) setup() error {
	if err := config.LoadDotEnv("."); err != nil {
		return err
	}

	cfg, path, err := loadConfig(a.opts.configPath)
	if err != nil {
		return err
	}
	if a.opts.endpoint != "" {
		if err := config.ValidateEndpoint(a.opts.endpoint); err != nil {
			return NewUsageError("--endpoint: %v", err)
		}
		cfg.Transport.Endpoint = a.opts.endpoint
	}
	if a.opts.token != "" {
		cfg.Transport.Token = a.opts.token
	}

	log, err := logging.New(logging.Options{
		Path:    cfg.Log.LogPath(),
		Level:   cfg.Log.Level,
		Verbose: a.opts.verbose,
	})
	if err != nil {
		return err
	}

	a.cfg, a.cfgPath, a.log = cfg, path, log
	a.log.Debug("config loaded",
		zap.String("path", path),
		zap.String("endpoint", cfg.Transport.Endpoint),
		zap.String("token", util.RedactSecret(cfg.Transport.Token)))
	return nil
}

// loadConfig loads the explicit file when given, otherwise the first file
// found in the config directory. The returned path is "" when no file was
// read.
func loadConfig(explicit string) (*config.Config, string, error) {
	if explicit != "" {
		cfg, err := config.LoadFromPath(explicit)
		return cfg, util.ExpandHome(explicit), err
	}

	path, err := config.FindConfigFile()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load()
	return cfg, path, err
}

// =============================================================================
// SHARED CONSTRUCTORS
// =============================================================================

// newTransport builds the HTTP client from [transport].
func newTransport(cfg *config.Config, log *zap.Logger) *client.Client {
	return client.New(cfg.Transport.Endpoint).
		WithToken(cfg.Transport.Token).
		WithTimeout(cfg.Transport.TimeoutDuration()).
		WithRateLimit(cfg.Transport.RatePerMinute).
		WithMaxResponseBytes(cfg.Transport.MaxResponseBytes).
		WithUserAgent("askterm/" + Version).
		WithLogger(log)
}

// newDispatcher starts a fresh session against the configured service. In
// verbose mode failed exchanges are described on stderr.
func (a *app) newDispatcher(transport dispatch.Transport, stderr io.Writer) *dispatch.Dispatcher {
	opts := []dispatch.Option{
		dispatch.WithLogger(a.log),
		dispatch.WithNotices(dispatch.Notices{
			NoReply: a.cfg.Messages.NoReply,
			Apology: a.cfg.Messages.Apology,
		}),
	}
	if a.opts.verbose {
		opts = append(opts, dispatch.WithDiagnosticHook(func(f dispatch.Failure) {
			fmt.Fprintf(stderr, "%s exchange failed after %s: %v\n",
				DimStyle.Render("[debug]"), f.Elapsed.Round(time.Millisecond), f.Err)
		}))
	}
	return dispatch.New(session.New(a.cfg.Messages.Greeting), transport, opts...)
}
