// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/askterm/internal/config"
	"github.com/jeranaias/askterm/internal/dispatch"
	"github.com/jeranaias/askterm/internal/render"
	"github.com/jeranaias/askterm/internal/ui/components"
	"github.com/jeranaias/askterm/internal/ui/styles"
)

// Placeholder is shown in the empty input box.
const Placeholder = "Message AI..."

// inputHeight is the number of visible input rows.
const inputHeight = 3

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. The dispatcher and
// everything it owns are touched only from Update.
type Model struct {
	dispatcher *dispatch.Dispatcher
	ctx        context.Context
	log        *zap.Logger

	// Styling
	theme   *styles.Theme
	replies *components.ReplyRenderer

	// Dimensions
	width  int
	height int

	// UI Components
	viewport viewport.Model
	input    textarea.Model
	typing   components.TypingIndicator
	header   *components.Header
	list     *components.MessageList
	help     help.Model
	keyMap   KeyMap
	toast    *components.Toast

	// Settings from [ui] and [render]
	title     string
	footer    string
	exportDir string
	clip      func(string) error

	// Rendered transcript, rebuilt when the transcript or width changes.
	transcriptView  string
	renderedCount   int
	renderedWidth   int
	transcriptDirty bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Model) {
		if log != nil {
			m.log = log.Named("tui")
		}
	}
}

// WithContext sets the context exchanges run under. Cancelling it aborts
// an in-flight request, which then resolves as a failure.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.clip = write
		}
	}
}

// WithExportDir sets where ctrl+e writes exports.
func WithExportDir(dir string) Option {
	return func(m *Model) {
		m.exportDir = dir
	}
}

// New creates a chat model driving d. cfg supplies the [ui] and [render]
// settings; nil means defaults.
func New(d *dispatch.Dispatcher, cfg *config.Config, opts ...Option) Model {
	if cfg == nil {
		cfg = config.Default()
	}

	ta := textarea.New()
	ta.Placeholder = Placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	m := Model{
		dispatcher: d,
		ctx:        context.Background(),
		log:        zap.NewNop(),
		viewport:   viewport.New(80, 20),
		input:      ta,
		help:       help.New(),
		keyMap:     DefaultKeyMap(),
		exportDir:  ".",
		clip:       clipboard.WriteAll,
		width:      80,
		height:     24,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.replies = components.NewReplyRenderer(render.New().WithLogger(m.log), renderOptions(cfg))
	_ = m.applyConfig(cfg)
	m.layout()
	return m
}

// renderOptions maps configuration to formatter options.
func renderOptions(cfg *config.Config) render.TerminalOptions {
	return render.TerminalOptions{
		Width:       cfg.Render.WrapWidth,
		Theme:       cfg.UI.Theme,
		CodeStyle:   cfg.UI.CodeStyle,
		LineNumbers: cfg.UI.LineNumbers,
	}
}

// applyConfig (re)builds everything that depends on [ui] and [render]. It
// returns the tick that restarts a running typing indicator.
func (m *Model) applyConfig(cfg *config.Config) tea.Cmd {
	m.replies.SetOptions(renderOptions(cfg))

	switch m.replies.Theme() {
	case render.ThemeNoTTY, render.ThemeASCII:
		m.theme = styles.NewPlainTheme()
	default:
		m.theme = styles.NewTheme()
	}
	m.theme.SetSize(m.width, m.height)

	m.title = cfg.UI.Title
	m.footer = cfg.UI.Footer

	m.header = components.NewHeader(m.theme)
	m.header.SetTitle(m.title)
	m.list = components.NewMessageList(m.theme, m.replies)
	m.list.ShowTimestamps = cfg.UI.ShowTimestamps

	m.transcriptDirty = true

	active := m.typing.IsActive()
	m.typing = components.NewTypingIndicator(m.theme)
	if active {
		return m.typing.Start()
	}
	return nil
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Pending reports whether an exchange is in flight.
func (m Model) Pending() bool {
	return m.dispatcher.Pending()
}

// Input returns the current input text.
func (m Model) Input() string {
	return m.input.Value()
}
