// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// HTMLOptions configures an HTMLFormatter.
type HTMLOptions struct {
	CodeStyle string
	// Sanitize passes the output through a user-content policy, which
	// strips scripts, event handlers and unknown markup.
	Sanitize bool
}

// HTMLFormatter renders Documents as an HTML fragment. Code is highlighted
// with CSS classes; WriteCSS emits the matching stylesheet.
type HTMLFormatter struct {
	style  *chroma.Style
	code   *chromahtml.Formatter
	policy *bluemonday.Policy
}

// NewHTMLFormatter creates an HTML formatter.
func NewHTMLFormatter(opts HTMLOptions) *HTMLFormatter {
	f := &HTMLFormatter{
		style: CodeStyle(opts.CodeStyle),
		code:  chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true)),
	}
	if opts.Sanitize {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).Globally()
		p.AllowAttrs("type", "checked", "disabled").OnElements("input")
		p.AllowElements("input")
		f.policy = p
	}
	return f
}

// Format renders doc.
func (f *HTMLFormatter) Format(doc *Document) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	f.blocks(&b, doc.Blocks)
	out := b.String()
	if f.policy != nil {
		out = f.policy.Sanitize(out)
	}
	return out
}

// WriteCSS writes the stylesheet for highlighted code and tables.
func (f *HTMLFormatter) WriteCSS(w io.Writer) error {
	if err := f.code.WriteCSS(w, f.style); err != nil {
		return fmt.Errorf("failed to write code CSS: %w", err)
	}
	_, err := io.WriteString(w, tableCSS)
	return err
}

const tableCSS = `
table.md-table { border-collapse: collapse; margin: 0.5em 0; }
table.md-table th, table.md-table td { border: 1px solid #444; padding: 4px 8px; }
table.md-table th { font-weight: bold; }
.align-left { text-align: left; }
.align-center { text-align: center; }
.align-right { text-align: right; }
pre.plain, pre.chroma { padding: 8px; overflow-x: auto; }
`

func (f *HTMLFormatter) blocks(b *strings.Builder, blocks []Block) {
	for _, blk := range blocks {
		f.block(b, blk)
	}
}

func (f *HTMLFormatter) block(b *strings.Builder, blk Block) {
	switch v := blk.(type) {
	case *Paragraph:
		b.WriteString("<p>")
		f.inlines(b, v.Inlines)
		b.WriteString("</p>\n")
	case *Heading:
		level := v.Level
		if level < 1 || level > 6 {
			level = 1
		}
		fmt.Fprintf(b, "<h%d>", level)
		f.inlines(b, v.Inlines)
		fmt.Fprintf(b, "</h%d>\n", level)
	case *CodeBlock:
		f.codeBlock(b, v)
	case *Table:
		f.table(b, v)
	case *List:
		tag := "ul"
		if v.Ordered {
			tag = "ol"
		}
		if v.Ordered && v.Start != 1 {
			fmt.Fprintf(b, "<ol start=\"%d\">\n", v.Start)
		} else {
			b.WriteString("<" + tag + ">\n")
		}
		for _, item := range v.Items {
			b.WriteString("<li>")
			if item.Task {
				b.WriteString(`<input type="checkbox" disabled`)
				if item.Checked {
					b.WriteString(" checked")
				}
				b.WriteString("> ")
			}
			if v.Tight {
				for i, ib := range item.Blocks {
					if p, ok := ib.(*Paragraph); ok {
						f.inlines(b, p.Inlines)
						if i < len(item.Blocks)-1 {
							b.WriteByte('\n')
						}
						continue
					}
					f.block(b, ib)
				}
			} else {
				b.WriteByte('\n')
				f.blocks(b, item.Blocks)
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</" + tag + ">\n")
	case *Quote:
		b.WriteString("<blockquote>\n")
		f.blocks(b, v.Blocks)
		b.WriteString("</blockquote>\n")
	case *Rule:
		b.WriteString("<hr>\n")
	case *HTMLBlock:
		b.WriteString(v.Raw)
		b.WriteByte('\n')
	}
}

func (f *HTMLFormatter) codeBlock(b *strings.Builder, cb *CodeBlock) {
	lang := ""
	if cb.Language != "" {
		lang = ` class="language-` + html.EscapeString(cb.Language) + `"`
	}
	if cb.Highlighted {
		var buf strings.Builder
		if err := f.code.Format(&buf, f.style, chroma.Literator(cb.Tokens...)); err == nil {
			b.WriteString(`<pre class="chroma"><code` + lang + `>`)
			b.WriteString(buf.String())
			b.WriteString("</code></pre>\n")
			return
		}
	}
	b.WriteString(`<pre class="plain"><code` + lang + `>`)
	b.WriteString(html.EscapeString(cb.Code))
	b.WriteString("</code></pre>\n")
}

func alignClass(t *Table, col int) string {
	if col >= len(t.Align) {
		return ""
	}
	switch t.Align[col] {
	case AlignLeft:
		return ` class="align-left"`
	case AlignCenter:
		return ` class="align-center"`
	case AlignRight:
		return ` class="align-right"`
	}
	return ""
}

func (f *HTMLFormatter) table(b *strings.Builder, t *Table) {
	b.WriteString("<table class=\"md-table\">\n<thead>\n<tr>")
	for i, c := range t.Header {
		b.WriteString("<th" + alignClass(t, i) + ">")
		f.inlines(b, c.Inlines)
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n")
	if len(t.Rows) > 0 {
		b.WriteString("<tbody>\n")
		for _, r := range t.Rows {
			b.WriteString("<tr>")
			for i, c := range r {
				b.WriteString("<td" + alignClass(t, i) + ">")
				f.inlines(b, c.Inlines)
				b.WriteString("</td>")
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</tbody>\n")
	}
	b.WriteString("</table>\n")
}

func (f *HTMLFormatter) inlines(b *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch v := in.(type) {
		case *Text:
			b.WriteString(html.EscapeString(v.Value))
		case *Emphasis:
			b.WriteString("<em>")
			f.inlines(b, v.Children)
			b.WriteString("</em>")
		case *Strong:
			b.WriteString("<strong>")
			f.inlines(b, v.Children)
			b.WriteString("</strong>")
		case *Strike:
			b.WriteString("<del>")
			f.inlines(b, v.Children)
			b.WriteString("</del>")
		case *Link:
			b.WriteString(`<a href="` + html.EscapeString(v.URL) + `"`)
			if v.Title != "" {
				b.WriteString(` title="` + html.EscapeString(v.Title) + `"`)
			}
			b.WriteString(">")
			f.inlines(b, v.Children)
			b.WriteString("</a>")
		case *Image:
			b.WriteString(`<img src="` + html.EscapeString(v.URL) + `" alt="` + html.EscapeString(v.Alt) + `"`)
			if v.Title != "" {
				b.WriteString(` title="` + html.EscapeString(v.Title) + `"`)
			}
			b.WriteString(">")
		case *Code:
			b.WriteString("<code>" + html.EscapeString(v.Value) + "</code>")
		case *RawHTML:
			b.WriteString(v.Raw)
		case *LineBreak:
			if v.Hard {
				b.WriteString("<br>\n")
			} else {
				b.WriteByte('\n')
			}
		}
	}
}
