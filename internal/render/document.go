// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
)

// Document is the display tree for one piece of text.
type Document struct {
	Blocks []Block
}

// Literal returns a document that shows raw as a single plain paragraph.
func Literal(raw string) *Document {
	return &Document{Blocks: []Block{&Paragraph{Inlines: []Inline{&Text{Value: raw}}}}}
}

// CodeBlocks returns every code block in document order, including those
// nested in lists and quotes.
func (d *Document) CodeBlocks() []*CodeBlock {
	var out []*CodeBlock
	var walk func(blocks []Block)
	walk = func(blocks []Block) {
		for _, b := range blocks {
			switch v := b.(type) {
			case *CodeBlock:
				out = append(out, v)
			case *Quote:
				walk(v.Blocks)
			case *List:
				for _, item := range v.Items {
					walk(item.Blocks)
				}
			}
		}
	}
	walk(d.Blocks)
	return out
}

// =============================================================================
// BLOCKS
// =============================================================================

// Block is a block-level node.
type Block interface {
	blockNode()
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Inlines []Inline
}

// Heading is a section heading, Level 1 through 6.
type Heading struct {
	Level   int
	Inlines []Inline
}

// CodeBlock is fenced or indented code.
type CodeBlock struct {
	// Language is the declared tag, or the detected lexer alias.
	Language string
	// Detected is true when Language was guessed from the code.
	Detected bool
	// Highlighted is true when Tokens carry syntax classes.
	Highlighted bool
	Code        string
	Tokens      []chroma.Token
}

// Alignment is a table column alignment.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Cell is one table cell.
type Cell struct {
	Inlines []Inline
}

// Table keeps header and body cells apart.
type Table struct {
	Align  []Alignment
	Header []Cell
	Rows   [][]Cell
}

// Columns returns the widest row length, header included.
func (t *Table) Columns() int {
	n := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// ListItem is one list entry. Task items carry a checkbox.
type ListItem struct {
	Task    bool
	Checked bool
	Blocks  []Block
}

// List is an ordered or bullet list.
type List struct {
	Ordered bool
	Start   int
	Tight   bool
	Items   []ListItem
}

// Quote is a block quote.
type Quote struct {
	Blocks []Block
}

// Rule is a thematic break.
type Rule struct{}

// HTMLBlock is block-level raw HTML, kept verbatim.
type HTMLBlock struct {
	Raw string
}

func (*Paragraph) blockNode() {}
func (*Heading) blockNode()   {}
func (*CodeBlock) blockNode() {}
func (*Table) blockNode()     {}
func (*List) blockNode()      {}
func (*Quote) blockNode()     {}
func (*Rule) blockNode()      {}
func (*HTMLBlock) blockNode() {}

// =============================================================================
// INLINES
// =============================================================================

// Inline is an inline node.
type Inline interface {
	inlineNode()
}

// Text is literal text.
type Text struct {
	Value string
}

// Emphasis is emphasized (italic) content.
type Emphasis struct {
	Children []Inline
}

// Strong is strongly emphasized (bold) content.
type Strong struct {
	Children []Inline
}

// Strike is struck-through content.
type Strike struct {
	Children []Inline
}

// Link is a hyperlink, including autolinks.
type Link struct {
	URL      string
	Title    string
	Children []Inline
}

// Image is an image reference; Alt is its text.
type Image struct {
	URL   string
	Title string
	Alt   string
}

// Code is inline code. It is never highlighted.
type Code struct {
	Value string
}

// RawHTML is an inline HTML tag, kept verbatim.
type RawHTML struct {
	Raw string
}

// LineBreak separates lines inside a paragraph. Soft breaks may be
// reflowed; hard breaks may not.
type LineBreak struct {
	Hard bool
}

func (*Text) inlineNode()      {}
func (*Emphasis) inlineNode()  {}
func (*Strong) inlineNode()    {}
func (*Strike) inlineNode()    {}
func (*Link) inlineNode()      {}
func (*Image) inlineNode()     {}
func (*Code) inlineNode()      {}
func (*RawHTML) inlineNode()   {}
func (*LineBreak) inlineNode() {}

// PlainText flattens inlines to unstyled text. Raw HTML tags are dropped.
func PlainText(inlines []Inline) string {
	var b strings.Builder
	writePlain(&b, inlines)
	return b.String()
}

func writePlain(b *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch v := in.(type) {
		case *Text:
			b.WriteString(v.Value)
		case *Emphasis:
			writePlain(b, v.Children)
		case *Strong:
			writePlain(b, v.Children)
		case *Strike:
			writePlain(b, v.Children)
		case *Link:
			writePlain(b, v.Children)
		case *Image:
			b.WriteString(v.Alt)
		case *Code:
			b.WriteString(v.Value)
		case *LineBreak:
			if v.Hard {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
	}
}
