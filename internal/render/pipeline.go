// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"
)

// Pipeline parses markdown into Documents. It is safe for concurrent use.
type Pipeline struct {
	md  goldmark.Markdown
	log *zap.Logger
}

// New creates a pipeline with GitHub-flavored markdown (tables,
// strikethrough, task lists, autolinks).
func New() *Pipeline {
	return &Pipeline{
		md:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log: zap.NewNop(),
	}
}

// WithLogger sets the logger used to report recovered parse failures.
func (p *Pipeline) WithLogger(log *zap.Logger) *Pipeline {
	if log != nil {
		p.log = log.Named("render")
	}
	return p
}

// Render parses raw into a Document. It never fails: if parsing or
// highlighting panics, the result is raw as a literal paragraph.
func (p *Pipeline) Render(raw string) (doc *Document) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("markdown render failed, showing literal text",
				zap.Any("panic", r), zap.Int("bytes", len(raw)))
			doc = Literal(raw)
		}
	}()

	src := []byte(raw)
	root := p.md.Parser().Parse(text.NewReader(src))
	c := &converter{src: src}
	return &Document{Blocks: c.blocks(root)}
}

// converter maps the goldmark AST onto Document nodes.
type converter struct {
	src []byte
}

func (c *converter) blocks(parent ast.Node) []Block {
	var out []Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *converter) block(n ast.Node) Block {
	switch node := n.(type) {
	case *ast.Paragraph:
		return &Paragraph{Inlines: c.inlines(node)}
	case *ast.TextBlock:
		return &Paragraph{Inlines: c.inlines(node)}
	case *ast.Heading:
		return &Heading{Level: node.Level, Inlines: c.inlines(node)}
	case *ast.ThematicBreak:
		return &Rule{}
	case *ast.FencedCodeBlock:
		lang := ""
		if node.Info != nil {
			lang = string(node.Language(c.src))
		}
		return highlight(c.code(node), lang)
	case *ast.CodeBlock:
		return highlight(c.code(node), "")
	case *ast.Blockquote:
		return &Quote{Blocks: c.blocks(node)}
	case *ast.List:
		return c.list(node)
	case *ast.HTMLBlock:
		raw := c.lines(node)
		if node.HasClosure() {
			raw += string(node.ClosureLine.Value(c.src))
		}
		return &HTMLBlock{Raw: strings.TrimRight(raw, "\n")}
	case *extast.Table:
		return c.table(node)
	default:
		// Unknown block kinds keep their source text.
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			return &Paragraph{Inlines: []Inline{&Text{Value: strings.TrimRight(c.lines(n), "\n")}}}
		}
		if n.HasChildren() {
			if inner := c.blocks(n); len(inner) > 0 {
				return &Quote{Blocks: inner}
			}
		}
		return nil
	}
}

func (c *converter) list(node *ast.List) *List {
	l := &List{Ordered: node.IsOrdered(), Start: node.Start, Tight: node.IsTight}
	for item := node.FirstChild(); item != nil; item = item.NextSibling() {
		li := ListItem{Blocks: c.blocks(item)}
		if first := item.FirstChild(); first != nil {
			if box, ok := first.FirstChild().(*extast.TaskCheckBox); ok {
				li.Task = true
				li.Checked = box.IsChecked
				trimTaskText(li.Blocks)
			}
		}
		l.Items = append(l.Items, li)
	}
	return l
}

// trimTaskText drops the space between a checkbox and its label.
func trimTaskText(blocks []Block) {
	if len(blocks) == 0 {
		return
	}
	p, ok := blocks[0].(*Paragraph)
	if !ok || len(p.Inlines) == 0 {
		return
	}
	if t, ok := p.Inlines[0].(*Text); ok {
		t.Value = strings.TrimLeft(t.Value, " \t")
	}
}

func (c *converter) table(node *extast.Table) *Table {
	t := &Table{}
	for _, a := range node.Alignments {
		t.Align = append(t.Align, alignment(a))
	}
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []Cell
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, Cell{Inlines: c.inlines(cell)})
		}
		if _, ok := row.(*extast.TableHeader); ok {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func alignment(a extast.Alignment) Alignment {
	switch a {
	case extast.AlignLeft:
		return AlignLeft
	case extast.AlignCenter:
		return AlignCenter
	case extast.AlignRight:
		return AlignRight
	default:
		return AlignNone
	}
}

func (c *converter) inlines(parent ast.Node) []Inline {
	var out []Inline
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			out = appendText(out, unescape(node.Segment.Value(c.src)))
			if node.HardLineBreak() {
				out = append(out, &LineBreak{Hard: true})
			} else if node.SoftLineBreak() {
				out = append(out, &LineBreak{})
			}
		case *ast.String:
			out = appendText(out, string(node.Value))
		case *ast.CodeSpan:
			out = append(out, &Code{Value: c.codeSpan(node)})
		case *ast.Emphasis:
			children := c.inlines(node)
			if node.Level >= 2 {
				out = append(out, &Strong{Children: children})
			} else {
				out = append(out, &Emphasis{Children: children})
			}
		case *extast.Strikethrough:
			out = append(out, &Strike{Children: c.inlines(node)})
		case *ast.Link:
			out = append(out, &Link{
				URL:      string(node.Destination),
				Title:    string(node.Title),
				Children: c.inlines(node),
			})
		case *ast.AutoLink:
			out = append(out, &Link{
				URL:      string(node.URL(c.src)),
				Children: []Inline{&Text{Value: string(node.Label(c.src))}},
			})
		case *ast.Image:
			out = append(out, &Image{
				URL:   string(node.Destination),
				Title: string(node.Title),
				Alt:   PlainText(c.inlines(node)),
			})
		case *ast.RawHTML:
			var b strings.Builder
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				b.Write(seg.Value(c.src))
			}
			out = append(out, &RawHTML{Raw: b.String()})
		case *extast.TaskCheckBox:
			// Carried on the ListItem.
		default:
			if n.HasChildren() {
				out = append(out, c.inlines(n)...)
			}
		}
	}
	return out
}

// appendText merges adjacent text runs.
func appendText(out []Inline, s string) []Inline {
	if s == "" {
		return out
	}
	if len(out) > 0 {
		if t, ok := out[len(out)-1].(*Text); ok {
			t.Value += s
			return out
		}
	}
	return append(out, &Text{Value: s})
}

func unescape(b []byte) string {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}

func (c *converter) codeSpan(node *ast.CodeSpan) string {
	var b strings.Builder
	for n := node.FirstChild(); n != nil; n = n.NextSibling() {
		switch t := n.(type) {
		case *ast.Text:
			v := t.Segment.Value(c.src)
			if len(v) > 0 && v[len(v)-1] == '\n' {
				b.Write(v[:len(v)-1])
				b.WriteByte(' ')
				continue
			}
			b.Write(v)
		case *ast.String:
			b.Write(t.Value)
		}
	}
	return b.String()
}

func (c *converter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return b.String()
}

func (c *converter) code(n ast.Node) string {
	return strings.TrimSuffix(c.lines(n), "\n")
}
