// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// DefaultCodeStyle is the chroma style used when none is configured.
const DefaultCodeStyle = "monokai"

// highlight tokenizes code. A declared language selects the lexer by name,
// alias or extension; an unknown tag leaves the code plain but keeps the tag.
// Without a tag the language is guessed and an inconclusive guess stays
// plain.
func highlight(code, lang string) *CodeBlock {
	cb := &CodeBlock{Language: strings.TrimSpace(lang), Code: code}

	var lexer chroma.Lexer
	if cb.Language != "" {
		lexer = lexers.Get(cb.Language)
	} else {
		lexer = lexers.Analyse(code)
		if lexer != nil && !isPlainLexer(lexer) {
			cb.Detected = true
			cb.Language = lexerAlias(lexer)
		}
	}
	if lexer == nil || isPlainLexer(lexer) {
		return cb
	}

	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return cb
	}
	cb.Tokens = it.Tokens()
	cb.Highlighted = len(cb.Tokens) > 0
	return cb
}

func isPlainLexer(l chroma.Lexer) bool {
	cfg := l.Config()
	if cfg == nil {
		return true
	}
	switch strings.ToLower(cfg.Name) {
	case "plaintext", "text", "fallback":
		return true
	}
	return false
}

func lexerAlias(l chroma.Lexer) string {
	cfg := l.Config()
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0]
	}
	return strings.ToLower(cfg.Name)
}

// CodeStyle returns the named chroma style, or the default when the name is
// unknown.
func CodeStyle(name string) *chroma.Style {
	if name == "" {
		name = DefaultCodeStyle
	}
	if s, ok := chromaStyles.Registry[strings.ToLower(name)]; ok {
		return s
	}
	return chromaStyles.Get(DefaultCodeStyle)
}

// ValidCodeStyle reports whether name is a registered chroma style.
func ValidCodeStyle(name string) bool {
	_, ok := chromaStyles.Registry[strings.ToLower(name)]
	return ok
}
