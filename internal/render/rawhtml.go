// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	spaceRun    = regexp.MustCompile(`[ \t\r\n]+`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	fragmentCtx = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
)

// inlineTag applies one inline HTML tag to st. It reports whether the tag
// is a line break.
func inlineTag(raw string, st *inlineState) bool {
	z := html.NewTokenizer(strings.NewReader(raw))
	brk := false
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return brk
		}
		tok := z.Token()
		delta := 0
		switch tt {
		case html.StartTagToken:
			delta = 1
		case html.EndTagToken:
			delta = -1
		case html.SelfClosingTagToken:
			if tok.DataAtom == atom.Br {
				brk = true
			}
			continue
		default:
			continue
		}
		switch tok.DataAtom {
		case atom.Br:
			brk = true
		case atom.B, atom.Strong:
			st.bold = max(0, st.bold+delta)
		case atom.I, atom.Em:
			st.italic = max(0, st.italic+delta)
		case atom.U, atom.Ins:
			st.underline = max(0, st.underline+delta)
		case atom.S, atom.Del, atom.Strike:
			st.strike = max(0, st.strike+delta)
		case atom.Code, atom.Kbd, atom.Tt:
			st.code = max(0, st.code+delta)
		}
	}
}

// htmlBlock reduces block-level HTML to styled text. Markup it cannot parse
// is shown as-is.
func (f *TerminalFormatter) htmlBlock(raw string) string {
	nodes, err := html.ParseFragment(strings.NewReader(raw), fragmentCtx)
	if err != nil {
		return f.pal.text.Render(raw)
	}
	w := &htmlWriter{f: f}
	for _, n := range nodes {
		w.walk(n, f.pal.text, false)
	}
	out := blankLines.ReplaceAllString(w.b.String(), "\n\n")
	return strings.Trim(out, "\n ")
}

type htmlWriter struct {
	f *TerminalFormatter
	b strings.Builder
}

func (w *htmlWriter) newline() {
	s := w.b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		w.b.WriteByte('\n')
	}
}

func (w *htmlWriter) walk(n *html.Node, style lipgloss.Style, pre bool) {
	switch n.Type {
	case html.TextNode:
		text := n.Data
		if !pre {
			text = spaceRun.ReplaceAllString(text, " ")
			if strings.HasSuffix(w.b.String(), "\n") {
				text = strings.TrimLeft(text, " ")
			}
		}
		if text != "" {
			w.b.WriteString(style.Render(text))
		}
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c, style, pre)
		}
		return
	}

	pal := w.f.pal
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title, atom.Template:
		return
	case atom.Br:
		w.b.WriteByte('\n')
		return
	case atom.Hr:
		w.newline()
		w.b.WriteString(pal.rule.Render(strings.Repeat(pal.ruleChar, 20)))
		w.b.WriteByte('\n')
		return
	case atom.Img:
		w.b.WriteString(pal.linkText.Render("[" + orDefault(attr(n, "alt"), "image") + "]"))
		return
	case atom.B, atom.Strong:
		style = style.Bold(true)
	case atom.I, atom.Em:
		style = style.Italic(true)
	case atom.U, atom.Ins:
		style = style.Underline(true)
	case atom.S, atom.Del, atom.Strike:
		style = style.Strikethrough(true)
	case atom.Code, atom.Kbd, atom.Tt:
		style = pal.code
	case atom.Pre:
		pre = true
	case atom.A:
		style = pal.linkText.Inherit(style)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		style = pal.headings[2].Inherit(style)
	}

	block := isBlockElement(n.DataAtom)
	if block {
		w.newline()
	}
	switch n.DataAtom {
	case atom.Li:
		w.b.WriteString(pal.item.Render(pal.bullet))
	case atom.Td, atom.Th:
		if prevElement(n) != nil {
			w.b.WriteString(pal.muted.Render(" | "))
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, style, pre)
	}

	if n.DataAtom == atom.A {
		if href := attr(n, "href"); href != "" {
			w.b.WriteString(" " + pal.link.Render("("+href+")"))
		}
	}
	if block {
		w.newline()
	}
}

func isBlockElement(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.Aside, atom.Nav, atom.Main, atom.Blockquote, atom.Pre, atom.Ul, atom.Ol,
		atom.Li, atom.Dl, atom.Dt, atom.Dd, atom.Table, atom.Thead, atom.Tbody,
		atom.Tfoot, atom.Tr, atom.Details, atom.Summary, atom.Figure, atom.Figcaption,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func prevElement(n *html.Node) *html.Node {
	for p := n.PrevSibling; p != nil; p = p.PrevSibling {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
