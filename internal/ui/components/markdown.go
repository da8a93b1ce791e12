// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/askterm/internal/render"
)

// maxCachedReplies bounds the render cache. When it fills up it is
// dropped whole; the next frame re-renders what is visible.
const maxCachedReplies = 256

type replyKey struct {
	text  string
	width int
}

// ReplyRenderer turns assistant text into styled terminal text. Rendering
// is pure, so results are cached by text and width. Not safe for
// concurrent use; the chat view calls it only from View.
type ReplyRenderer struct {
	pipeline  *render.Pipeline
	opts      render.TerminalOptions
	formatter *render.TerminalFormatter
	cache     map[replyKey]string
}

// NewReplyRenderer creates a renderer. opts.Width, when set, caps the wrap
// width regardless of the bubble size.
func NewReplyRenderer(pipeline *render.Pipeline, opts render.TerminalOptions) *ReplyRenderer {
	if pipeline == nil {
		pipeline = render.New()
	}
	return &ReplyRenderer{
		pipeline:  pipeline,
		opts:      opts,
		formatter: render.NewTerminalFormatter(opts),
		cache:     make(map[replyKey]string),
	}
}

// SetOptions replaces the formatter options and drops the cache. Used when
// the theme or code style changes at runtime.
func (r *ReplyRenderer) SetOptions(opts render.TerminalOptions) {
	r.opts = opts
	r.formatter = render.NewTerminalFormatter(opts)
	r.cache = make(map[replyKey]string)
}

// Options returns the current formatter options.
func (r *ReplyRenderer) Options() render.TerminalOptions {
	return r.opts
}

// Theme returns the resolved render theme.
func (r *ReplyRenderer) Theme() string {
	return r.formatter.Theme()
}

// Render formats text to fit width columns.
func (r *ReplyRenderer) Render(text string, width int) string {
	if r.opts.Width > 0 && (width <= 0 || r.opts.Width < width) {
		width = r.opts.Width
	}
	key := replyKey{text: text, width: width}
	if out, ok := r.cache[key]; ok {
		return out
	}

	doc := r.pipeline.Render(text)
	out := strings.TrimRight(r.formatter.WithWidth(width).Format(doc), "\n")

	if len(r.cache) >= maxCachedReplies {
		r.cache = make(map[replyKey]string)
	}
	r.cache[key] = out
	return out
}

// Len returns the number of cached renders.
func (r *ReplyRenderer) Len() int {
	return len(r.cache)
}
