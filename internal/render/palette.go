// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/charmbracelet/glamour/ansi"
	glamourStyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by ResolveTheme and NewTerminalFormatter.
const (
	ThemeAuto    = "auto"
	ThemeDark    = "dark"
	ThemeLight   = "light"
	ThemeDracula = "dracula"
	ThemeNoTTY   = "notty"
	ThemeASCII   = "ascii"
)

// Themes lists the accepted theme names.
func Themes() []string {
	return []string{ThemeAuto, ThemeDark, ThemeLight, ThemeDracula, ThemeNoTTY, ThemeASCII}
}

// ValidTheme reports whether name is an accepted theme.
func ValidTheme(name string) bool {
	for _, t := range Themes() {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// ResolveTheme turns "auto" into dark or light based on the terminal
// background. Output that is not a terminal always gets notty.
func ResolveTheme(name string, tty bool) string {
	if !tty {
		return ThemeNoTTY
	}
	name = strings.ToLower(name)
	if name == "" || name == ThemeAuto || !ValidTheme(name) {
		if termenv.HasDarkBackground() {
			return ThemeDark
		}
		return ThemeLight
	}
	return name
}

func styleConfig(theme string) ansi.StyleConfig {
	switch strings.ToLower(theme) {
	case ThemeLight:
		return glamourStyles.LightStyleConfig
	case ThemeDracula:
		return glamourStyles.DraculaStyleConfig
	case ThemeNoTTY:
		return glamourStyles.NoTTYStyleConfig
	case ThemeASCII:
		return glamourStyles.ASCIIStyleConfig
	default:
		return glamourStyles.DarkStyleConfig
	}
}

// palette is a glamour style config reduced to lipgloss styles.
type palette struct {
	plain bool // no colors, no box drawing beyond ASCII
	ascii bool

	text     lipgloss.Style
	headings [7]lipgloss.Style
	hPrefix  [7]string
	hSuffix  [7]string
	emph     lipgloss.Style
	strong   lipgloss.Style
	strike   lipgloss.Style
	link     lipgloss.Style
	linkText lipgloss.Style
	code     lipgloss.Style
	quote    lipgloss.Style
	rule     lipgloss.Style
	item     lipgloss.Style
	muted    lipgloss.Style
	border   lipgloss.Color

	bullet    string
	enumSep   string
	ticked    string
	unticked  string
	quoteMark string
	ruleChar  string
}

func newPalette(theme string) palette {
	cfg := styleConfig(theme)
	theme = strings.ToLower(theme)

	p := palette{
		plain:     theme == ThemeNoTTY || theme == ThemeASCII,
		ascii:     theme == ThemeASCII,
		text:      primitive(cfg.Text),
		emph:      primitive(cfg.Emph).Italic(true),
		strong:    primitive(cfg.Strong).Bold(true),
		strike:    primitive(cfg.Strikethrough).Strikethrough(true),
		link:      primitive(cfg.Link),
		linkText:  primitive(cfg.LinkText),
		code:      primitive(cfg.Code.StylePrimitive),
		quote:     primitive(cfg.BlockQuote.StylePrimitive),
		rule:      primitive(cfg.HorizontalRule),
		item:      primitive(cfg.Item),
		bullet:    orDefault(cfg.Item.BlockPrefix, "• "),
		enumSep:   orDefault(cfg.Enumeration.BlockPrefix, ". "),
		ticked:    orDefault(cfg.Task.Ticked, "[x] "),
		unticked:  orDefault(cfg.Task.Unticked, "[ ] "),
		quoteMark: "│ ",
		ruleChar:  "─",
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		border:    lipgloss.Color("240"),
	}
	if cfg.BlockQuote.IndentToken != nil {
		p.quoteMark = *cfg.BlockQuote.IndentToken
	}
	if p.ascii {
		p.quoteMark = "| "
		p.ruleChar = "-"
	}
	if theme == ThemeLight {
		p.muted = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
		p.border = lipgloss.Color("250")
	}

	heading := cfg.Heading.StylePrimitive
	levels := []ansi.StyleBlock{cfg.H1, cfg.H1, cfg.H2, cfg.H3, cfg.H4, cfg.H5, cfg.H6}
	for i := 1; i <= 6; i++ {
		h := levels[i].StylePrimitive
		p.headings[i] = primitive(h).Inherit(primitive(heading)).Bold(true)
		p.hPrefix[i] = h.Prefix
		p.hSuffix[i] = h.Suffix
	}
	return p
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// primitive maps a glamour style primitive onto a lipgloss style.
func primitive(sp ansi.StylePrimitive) lipgloss.Style {
	s := lipgloss.NewStyle()
	if sp.Color != nil {
		s = s.Foreground(lipgloss.Color(*sp.Color))
	}
	if sp.BackgroundColor != nil {
		s = s.Background(lipgloss.Color(*sp.BackgroundColor))
	}
	if sp.Bold != nil {
		s = s.Bold(*sp.Bold)
	}
	if sp.Italic != nil {
		s = s.Italic(*sp.Italic)
	}
	if sp.Underline != nil {
		s = s.Underline(*sp.Underline)
	}
	if sp.CrossedOut != nil {
		s = s.Strikethrough(*sp.CrossedOut)
	}
	if sp.Faint != nil {
		s = s.Faint(*sp.Faint)
	}
	return s
}
