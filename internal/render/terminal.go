// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// DefaultWidth is the wrap width used when none is given.
const DefaultWidth = 80

// TerminalOptions configures a TerminalFormatter.
type TerminalOptions struct {
	Width       int    // wrap width; <= 0 means DefaultWidth
	Theme       string // see Themes; "auto" is resolved against the terminal
	CodeStyle   string // chroma style name
	LineNumbers bool   // number lines in code blocks
}

// TerminalFormatter renders Documents as styled terminal text.
type TerminalFormatter struct {
	width       int
	theme       string
	lineNumbers bool
	pal         palette
	codeStyle   *chroma.Style
	code        chroma.Formatter
}

// NewTerminalFormatter creates a terminal formatter.
func NewTerminalFormatter(opts TerminalOptions) *TerminalFormatter {
	theme := ResolveTheme(opts.Theme, true)
	f := &TerminalFormatter{
		width:       opts.Width,
		theme:       theme,
		lineNumbers: opts.LineNumbers,
		pal:         newPalette(theme),
		codeStyle:   CodeStyle(opts.CodeStyle),
	}
	if f.width <= 0 {
		f.width = DefaultWidth
	}
	if !f.pal.plain {
		f.code = formatters.Get("terminal256")
	}
	return f
}

// Width returns the wrap width.
func (f *TerminalFormatter) Width() int {
	return f.width
}

// Theme returns the resolved theme name.
func (f *TerminalFormatter) Theme() string {
	return f.theme
}

// WithWidth returns a copy of f that wraps at width.
func (f *TerminalFormatter) WithWidth(width int) *TerminalFormatter {
	c := *f
	if width > 0 {
		c.width = width
	}
	return &c
}

// Format renders doc. Blocks are separated by a blank line.
func (f *TerminalFormatter) Format(doc *Document) string {
	if doc == nil {
		return ""
	}
	return f.blocks(doc.Blocks, f.width, "\n\n")
}

func (f *TerminalFormatter) blocks(blocks []Block, width int, sep string) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := f.block(b, width); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func (f *TerminalFormatter) block(b Block, width int) string {
	if width < 10 {
		width = 10
	}
	switch v := b.(type) {
	case *Paragraph:
		return f.wrap(f.inlines(v.Inlines, f.pal.text), width)
	case *Heading:
		level := v.Level
		if level < 1 || level > 6 {
			level = 1
		}
		title := f.pal.hPrefix[level] + PlainText(v.Inlines) + f.pal.hSuffix[level]
		return f.pal.headings[level].Render(f.wrap(title, width))
	case *CodeBlock:
		return f.codeBlock(v, width)
	case *Table:
		return f.table(v, width)
	case *List:
		return f.list(v, width)
	case *Quote:
		mark := f.pal.quote.Render(f.pal.quoteMark)
		inner := f.blocks(v.Blocks, width-lipgloss.Width(f.pal.quoteMark), "\n\n")
		lines := strings.Split(inner, "\n")
		for i, line := range lines {
			lines[i] = mark + line
		}
		return strings.Join(lines, "\n")
	case *Rule:
		n := width
		if n > 40 {
			n = 40
		}
		return f.pal.rule.Render(strings.Repeat(f.pal.ruleChar, n))
	case *HTMLBlock:
		return f.wrap(f.htmlBlock(v.Raw), width)
	}
	return ""
}

func (f *TerminalFormatter) wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}

// =============================================================================
// INLINES
// =============================================================================

// inlineState tracks formatting opened by inline HTML tags.
type inlineState struct {
	bold, italic, underline, strike, code int
}

func (st *inlineState) apply(s lipgloss.Style, pal palette) lipgloss.Style {
	if st.code > 0 {
		return pal.code
	}
	if st.bold > 0 {
		s = s.Bold(true)
	}
	if st.italic > 0 {
		s = s.Italic(true)
	}
	if st.underline > 0 {
		s = s.Underline(true)
	}
	if st.strike > 0 {
		s = s.Strikethrough(true)
	}
	return s
}

func (f *TerminalFormatter) inlines(inlines []Inline, base lipgloss.Style) string {
	var b strings.Builder
	st := &inlineState{}
	f.writeInlines(&b, inlines, base, st)
	return b.String()
}

func (f *TerminalFormatter) writeInlines(b *strings.Builder, inlines []Inline, base lipgloss.Style, st *inlineState) {
	for _, in := range inlines {
		switch v := in.(type) {
		case *Text:
			b.WriteString(st.apply(base, f.pal).Render(v.Value))
		case *Emphasis:
			f.writeInlines(b, v.Children, f.pal.emph.Inherit(base), st)
		case *Strong:
			f.writeInlines(b, v.Children, f.pal.strong.Inherit(base), st)
		case *Strike:
			f.writeInlines(b, v.Children, f.pal.strike.Inherit(base), st)
		case *Link:
			label := PlainText(v.Children)
			b.WriteString(f.pal.linkText.Inherit(base).Render(label))
			if v.URL != "" && v.URL != label && strings.TrimPrefix(v.URL, "mailto:") != label {
				b.WriteString(" " + f.pal.link.Render("("+v.URL+")"))
			}
		case *Image:
			alt := v.Alt
			if alt == "" {
				alt = "image"
			}
			b.WriteString(f.pal.linkText.Render("["+alt+"]") + " " + f.pal.link.Render("("+v.URL+")"))
		case *Code:
			b.WriteString(f.pal.code.Render(v.Value))
		case *RawHTML:
			if inlineTag(v.Raw, st) {
				b.WriteByte('\n')
			}
		case *LineBreak:
			if v.Hard {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
	}
}

// =============================================================================
// CODE BLOCKS
// =============================================================================

func (f *TerminalFormatter) codeBlock(cb *CodeBlock, width int) string {
	body := cb.Code
	if cb.Highlighted && f.code != nil {
		var buf strings.Builder
		if err := f.code.Format(&buf, f.codeStyle, chroma.Literator(cb.Tokens...)); err == nil {
			body = buf.String()
		}
	}
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")

	if f.lineNumbers && len(lines) > 1 {
		numWidth := len(strconv.Itoa(len(lines)))
		for i, line := range lines {
			num := fmt.Sprintf("%*d", numWidth, i+1)
			lines[i] = f.pal.muted.Render(num) + " " + line
		}
	}
	content := strings.Join(lines, "\n")

	label := cb.Language
	if cb.Detected {
		label += " (detected)"
	}

	if f.pal.plain {
		indented := "    " + strings.ReplaceAll(content, "\n", "\n    ")
		if label != "" {
			return "[" + label + "]\n" + indented
		}
		return indented
	}

	if label != "" {
		content = f.pal.muted.Italic(true).Render(label) + "\n" + content
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(f.pal.border).
		Padding(0, 1).
		MaxWidth(width).
		Render(content)
}

// =============================================================================
// TABLES
// =============================================================================

var asciiBorder = lipgloss.Border{
	Top: "-", Bottom: "-", Left: "|", Right: "|",
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
	MiddleLeft: "+", MiddleRight: "+", Middle: "+", MiddleTop: "+", MiddleBottom: "+",
}

func (f *TerminalFormatter) table(t *Table, width int) string {
	cols := t.Columns()
	if cols == 0 {
		return ""
	}
	headers := make([]string, cols)
	for i, c := range t.Header {
		headers[i] = f.inlines(c.Inlines, f.pal.strong)
	}
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make([]string, cols)
		for i, c := range r {
			row[i] = f.inlines(c.Inlines, f.pal.text)
		}
		rows = append(rows, row)
	}

	border := lipgloss.RoundedBorder()
	if f.pal.ascii {
		border = asciiBorder
	}
	tbl := table.New().
		Border(border).
		BorderStyle(lipgloss.NewStyle().Foreground(f.pal.border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if col < len(t.Align) {
				switch t.Align[col] {
				case AlignCenter:
					s = s.Align(lipgloss.Center)
				case AlignRight:
					s = s.Align(lipgloss.Right)
				}
			}
			return s
		})

	out := tbl.Render()
	if lipgloss.Width(out) > width {
		out = tbl.Width(width).Render()
	}
	return out
}

// =============================================================================
// LISTS
// =============================================================================

func (f *TerminalFormatter) list(l *List, width int) string {
	sep := "\n"
	if !l.Tight {
		sep = "\n\n"
	}
	items := make([]string, 0, len(l.Items))
	for i, item := range l.Items {
		marker := f.pal.bullet
		if l.Ordered {
			marker = strconv.Itoa(l.Start+i) + f.pal.enumSep
		}
		if item.Task {
			if item.Checked {
				marker += f.pal.ticked
			} else {
				marker += f.pal.unticked
			}
		}
		indent := lipgloss.Width(marker)
		body := f.blocks(item.Blocks, width-indent, sep)
		lines := strings.Split(body, "\n")
		for j, line := range lines {
			if j == 0 {
				lines[j] = f.pal.item.Render(marker) + line
			} else if line != "" {
				lines[j] = strings.Repeat(" ", indent) + line
			}
		}
		items = append(items, strings.Join(lines, "\n"))
	}
	return strings.Join(items, sep)
}
