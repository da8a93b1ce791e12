// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns reply text into a structured display tree.
//
// Reply text is markdown from a semi-trusted service: it may contain tables,
// fenced code, inline code and raw HTML. Render parses it into a Document
// (blocks of inlines) and never fails: anything the parser cannot make sense
// of comes out as literal text.
//
// Code blocks are tokenized with chroma at parse time. A declared language
// selects the lexer; without one the language is guessed, and an
// inconclusive guess leaves the block as plain monospace. Inline code is
// never highlighted.
//
// Raw HTML is preserved as structure (HTMLBlock, RawHTML). The formatters
// decide how to show it: TerminalFormatter reduces it to styled text,
// HTMLFormatter emits it as markup (optionally through bluemonday).
//
// # Usage
//
//	p := render.New()
//	doc := p.Render(reply)
//	fmt.Println(render.NewTerminalFormatter(render.TerminalOptions{Width: 80}).Format(doc))
package render
