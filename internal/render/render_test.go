// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiSeq.ReplaceAllString(s, "")
}

// ignoreTokens skips chroma token slices in tree comparisons.
var ignoreTokens = cmpopts.IgnoreFields(CodeBlock{}, "Tokens")

func TestRender_Structure(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		in   string
		want []Block
	}{
		{
			name: "plain text",
			in:   "plain",
			want: []Block{&Paragraph{Inlines: []Inline{&Text{Value: "plain"}}}},
		},
		{
			name: "inline styles",
			in:   "**bold** and *it* ~~gone~~ [link](http://x.io)",
			want: []Block{&Paragraph{Inlines: []Inline{
				&Strong{Children: []Inline{&Text{Value: "bold"}}},
				&Text{Value: " and "},
				&Emphasis{Children: []Inline{&Text{Value: "it"}}},
				&Text{Value: " "},
				&Strike{Children: []Inline{&Text{Value: "gone"}}},
				&Text{Value: " "},
				&Link{URL: "http://x.io", Children: []Inline{&Text{Value: "link"}}},
			}}},
		},
		{
			name: "inline code is not a code block",
			in:   "Use `x := 1` here",
			want: []Block{&Paragraph{Inlines: []Inline{
				&Text{Value: "Use "},
				&Code{Value: "x := 1"},
				&Text{Value: " here"},
			}}},
		},
		{
			name: "heading and rule",
			in:   "# Title\n\n---",
			want: []Block{
				&Heading{Level: 1, Inlines: []Inline{&Text{Value: "Title"}}},
				&Rule{},
			},
		},
		{
			name: "table keeps header apart",
			in:   "| a | b |\n|:--|--:|\n| 1 | 2 |\n",
			want: []Block{&Table{
				Align:  []Alignment{AlignLeft, AlignRight},
				Header: []Cell{{Inlines: []Inline{&Text{Value: "a"}}}, {Inlines: []Inline{&Text{Value: "b"}}}},
				Rows: [][]Cell{{
					{Inlines: []Inline{&Text{Value: "1"}}},
					{Inlines: []Inline{&Text{Value: "2"}}},
				}},
			}},
		},
		{
			name: "escaped punctuation",
			in:   `a\*b \| c`,
			want: []Block{&Paragraph{Inlines: []Inline{&Text{Value: "a*b | c"}}}},
		},
		{
			name: "inline raw html kept",
			in:   "a <b>bold</b> b",
			want: []Block{&Paragraph{Inlines: []Inline{
				&Text{Value: "a "},
				&RawHTML{Raw: "<b>"},
				&Text{Value: "bold"},
				&RawHTML{Raw: "</b>"},
				&Text{Value: " b"},
			}}},
		},
		{
			name: "html block kept",
			in:   "<div>\nhello<br>world\n</div>",
			want: []Block{&HTMLBlock{Raw: "<div>\nhello<br>world\n</div>"}},
		},
		{
			name: "unknown declared language stays plain",
			in:   "```nosuchlang\nabc\n```",
			want: []Block{&CodeBlock{Language: "nosuchlang", Code: "abc"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := p.Render(tt.in)
			if diff := cmp.Diff(tt.want, doc.Blocks, ignoreTokens); diff != "" {
				t.Errorf("Render(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestRender_DeclaredLanguage(t *testing.T) {
	doc := New().Render("```js\nconst x = 1;\n```")
	require.Len(t, doc.Blocks, 1)

	cb, ok := doc.Blocks[0].(*CodeBlock)
	require.True(t, ok, "expected *CodeBlock, got %T", doc.Blocks[0])
	assert.Equal(t, "js", cb.Language)
	assert.False(t, cb.Detected)
	assert.True(t, cb.Highlighted)
	assert.Equal(t, "const x = 1;", cb.Code)

	keyword := false
	for _, tok := range cb.Tokens {
		if tok.Type.InCategory(chroma.Keyword) {
			keyword = true
		}
	}
	assert.True(t, keyword, "expected a keyword token in %v", cb.Tokens)
}

func TestRender_DetectedLanguage(t *testing.T) {
	doc := New().Render("```\n#!/bin/bash\necho hi\n```")
	blocks := doc.CodeBlocks()
	require.Len(t, blocks, 1)
	assert.True(t, blocks[0].Detected)
	assert.True(t, blocks[0].Highlighted)
	assert.NotEmpty(t, blocks[0].Language)
}

func TestRender_InconclusiveDetection(t *testing.T) {
	doc := New().Render("```\njust some words\n```")
	blocks := doc.CodeBlocks()
	require.Len(t, blocks, 1)
	assert.False(t, blocks[0].Highlighted)
	assert.Empty(t, blocks[0].Tokens)
	assert.Equal(t, "just some words", blocks[0].Code)
}

func TestRender_UnterminatedFence(t *testing.T) {
	var doc *Document
	require.NotPanics(t, func() {
		doc = New().Render("```js\nconst x")
	})
	blocks := doc.CodeBlocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, "const x", blocks[0].Code)

	out := stripANSI(NewTerminalFormatter(TerminalOptions{Theme: ThemeNoTTY}).Format(doc))
	assert.Contains(t, out, "const x")
}

func TestRender_TaskList(t *testing.T) {
	doc := New().Render("- [x] done\n- [ ] todo\n")
	require.Len(t, doc.Blocks, 1)
	list, ok := doc.Blocks[0].(*List)
	require.True(t, ok)
	require.Len(t, list.Items, 2)

	assert.True(t, list.Items[0].Task)
	assert.True(t, list.Items[0].Checked)
	assert.True(t, list.Items[1].Task)
	assert.False(t, list.Items[1].Checked)
	assert.True(t, list.Tight)
}

func TestRender_NestedCodeBlocks(t *testing.T) {
	doc := New().Render("> ```go\n> x := 1\n> ```\n\n- item\n\n  ```py\n  y = 2\n  ```\n")
	blocks := doc.CodeBlocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "go", blocks[0].Language)
	assert.Equal(t, "py", blocks[1].Language)
}

func TestRender_Concurrent(t *testing.T) {
	p := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := p.Render("| a |\n|---|\n| 1 |\n\n```go\nfunc main() {}\n```")
			assert.Len(t, doc.Blocks, 2)
		}()
	}
	wg.Wait()
}

func TestLiteral(t *testing.T) {
	want := []Block{&Paragraph{Inlines: []Inline{&Text{Value: "**not parsed**"}}}}
	if diff := cmp.Diff(want, Literal("**not parsed**").Blocks); diff != "" {
		t.Errorf("Literal mismatch (-want +got):\n%s", diff)
	}
}

func TestPlainText(t *testing.T) {
	in := []Inline{
		&Strong{Children: []Inline{&Text{Value: "a"}}},
		&LineBreak{},
		&Code{Value: "b"},
		&RawHTML{Raw: "<i>"},
		&LineBreak{Hard: true},
		&Image{Alt: "c"},
	}
	assert.Equal(t, "a b\nc", PlainText(in))
}

// =============================================================================
// TERMINAL
// =============================================================================

func TestTerminal_Paragraph(t *testing.T) {
	f := NewTerminalFormatter(TerminalOptions{Theme: ThemeNoTTY, Width: 20})
	doc := New().Render("the quick brown fox jumps over the lazy dog again and again")
	out := stripANSI(f.Format(doc))

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 20, "line %q too wide", line)
	}
	assert.Equal(t, "the quick brown fox jumps over the lazy dog again and again",
		strings.Join(strings.Fields(out), " "))
}

func TestTerminal_HighlightedCode(t *testing.T) {
	f := NewTerminalFormatter(TerminalOptions{Theme: ThemeDark, Width: 60})
	out := f.Format(New().Render("```js\nconst x = 1;\n```"))

	assert.Contains(t, out, "\x1b[", "highlighted code should carry escape sequences")
	plain := stripANSI(out)
	assert.Contains(t, plain, "const x = 1;")
	assert.Contains(t, plain, "js")
}

func TestTerminal_PlainCodeBlock(t *testing.T) {
	f := NewTerminalFormatter(TerminalOptions{Theme: ThemeNoTTY})
	out := f.Format(New().Render("```js\nconst x = 1;\n```"))
	assert.Equal(t, "[js]\n    const x = 1;", out)
}

func TestTerminal_LineNumbers(t *testing.T) {
	f := NewTerminalFormatter(TerminalOptions{Theme: ThemeNoTTY, LineNumbers: true})
	out := stripANSI(f.Format(New().Render("```\na\nb\n```")))
	assert.Contains(t, out, "1 a")
	assert.Contains(t, out, "2 b")
}

func TestTerminal_Table(t *testing.T) {
	f := NewTerminalFormatter(TerminalOptions{Theme: ThemeASCII})
	out := stripANSI(f.Format(New().Render("| name | n |\n|:--|--:|\n| alpha | 1 |\n| b | 22 |\n")))

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 5, "table output:\n%s", out)
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "22")
	assert.Contains(t, out, "+")
	for _, line := range lines[1:] {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(line), "ragged table:\n%s", out)
	}
}

func TestTerminal_List(t *testing.T) {
	f := NewTerminalFormatter(TerminalOptions{Theme: ThemeASCII})
	out := stripANSI(f.Format(New().Render("3. three\n4. four\n")))
	assert.Equal(t, "3. three\n4. four", out)
}

func TestTerminal_RawHTML(t *testing.T) {
	f := NewTerminalFormatter(TerminalOptions{Theme: ThemeNoTTY})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"inline break", "a<br>b", "a\nb"},
		{"inline tags dropped", "a <b>bold</b> b", "a bold b"},
		{"block", "<div>\nhello<br>world\n</div>", "hello\nworld"},
		{"script dropped", "<div><script>alert(1)</script>ok</div>", "ok"},
		{"list items", "<ul>\n<li>one</li>\n<li>two</li>\n</ul>", "• one\n• two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(f.Format(New().Render(tt.in)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminal_WithWidth(t *testing.T) {
	f := NewTerminalFormatter(TerminalOptions{Theme: ThemeNoTTY})
	assert.Equal(t, DefaultWidth, f.Width())
	g := f.WithWidth(40)
	assert.Equal(t, 40, g.Width())
	assert.Equal(t, DefaultWidth, f.Width())
	assert.Equal(t, 40, g.WithWidth(0).Width())
}

func TestResolveTheme(t *testing.T) {
	assert.Equal(t, ThemeNoTTY, ResolveTheme(ThemeDark, false))
	assert.Equal(t, ThemeLight, ResolveTheme(ThemeLight, true))
	assert.Equal(t, ThemeASCII, ResolveTheme("ASCII", true))
	assert.Contains(t, []string{ThemeDark, ThemeLight}, ResolveTheme(ThemeAuto, true))
	assert.True(t, ValidTheme("Dracula"))
	assert.False(t, ValidTheme("neon"))
}

func TestCodeStyle(t *testing.T) {
	assert.True(t, ValidCodeStyle("monokai"))
	assert.False(t, ValidCodeStyle("no-such-style"))
	assert.Equal(t, CodeStyle("").Name, CodeStyle("no-such-style").Name)
}

// =============================================================================
// HTML
// =============================================================================

func TestHTML_Format(t *testing.T) {
	f := NewHTMLFormatter(HTMLOptions{})
	p := New()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"escapes text", "a < b & c", []string{"<p>a &lt; b &amp; c</p>"}},
		{"raw html passes", "a <b>bold</b>", []string{"<p>a <b>bold</b></p>"}},
		{"table", "| a | b |\n|:-:|--:|\n| 1 | 2 |", []string{
			`<th class="align-center">a</th>`,
			`<td class="align-right">2</td>`,
			"<tbody>",
		}},
		{"highlighted code", "```go\nfunc main() {}\n```", []string{
			`<pre class="chroma"><code class="language-go">`,
			"<span class=",
		}},
		{"plain code", "```nosuchlang\n<x>\n```", []string{
			`<pre class="plain"><code class="language-nosuchlang">&lt;x&gt;</code></pre>`,
		}},
		{"task list", "- [x] done", []string{`<input type="checkbox" disabled checked> done`}},
		{"ordered start", "7. seven", []string{`<ol start="7">`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Format(p.Render(tt.in))
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestHTML_Sanitize(t *testing.T) {
	in := "<script>alert(1)</script>\n\nhello <a href=\"javascript:alert(1)\">x</a>\n\n```go\nx := 1\n```"
	doc := New().Render(in)

	raw := NewHTMLFormatter(HTMLOptions{}).Format(doc)
	assert.Contains(t, raw, "<script>")

	clean := NewHTMLFormatter(HTMLOptions{Sanitize: true}).Format(doc)
	assert.NotContains(t, clean, "<script")
	assert.NotContains(t, clean, "javascript:")
	assert.Contains(t, clean, "hello")
	assert.Contains(t, clean, `class="chroma"`)
}

func TestHTML_WriteCSS(t *testing.T) {
	var b strings.Builder
	require.NoError(t, NewHTMLFormatter(HTMLOptions{}).WriteCSS(&b))
	assert.Contains(t, b.String(), ".chroma")
	assert.Contains(t, b.String(), "md-table")
}
