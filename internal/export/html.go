// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/jeranaias/askterm/internal/model"
	"github.com/jeranaias/askterm/internal/render"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page. Assistant
// replies go through the render pipeline; user text is escaped verbatim.
type HTMLExporter struct {
	options   *Options
	pipeline  *render.Pipeline
	formatter *render.HTMLFormatter
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options:  opts,
		pipeline: render.New(),
		formatter: render.NewHTMLFormatter(render.HTMLOptions{
			CodeStyle: opts.CodeStyle,
			Sanitize:  opts.SanitizeHTML,
		}),
	}
}

// Export converts a snapshot to HTML.
func (e *HTMLExporter) Export(snap *Snapshot) ([]byte, error) {
	if err := snap.validate(); err != nil {
		return nil, err
	}

	title := html.EscapeString(snap.displayTitle())

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", title)
	sb.WriteString("<meta name=\"generator\" content=\"askterm\">\n")
	fmt.Fprintf(&sb, "<meta name=\"date\" content=\"%s\">\n", snap.StartedAt.Format(time.RFC3339))

	sb.WriteString("<style>\n")
	sb.WriteString(pageCSS)
	if err := e.formatter.WriteCSS(&sb); err != nil {
		return nil, err
	}
	sb.WriteString("</style>\n</head>\n<body>\n<div class=\"container\">\n")

	fmt.Fprintf(&sb, "<header class=\"header\">\n<h1>%s</h1>\n", title)
	if e.options.IncludeMetadata {
		sb.WriteString("<div class=\"metadata\">\n")
		fmt.Fprintf(&sb, "<span class=\"meta-item\"><strong>Session:</strong> <code>%s</code></span>\n", html.EscapeString(snap.SessionID))
		fmt.Fprintf(&sb, "<span class=\"meta-item\"><strong>Started:</strong> %s</span>\n", formatTimestamp(snap.StartedAt))
		fmt.Fprintf(&sb, "<span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(snap.Messages))
		sb.WriteString("</div>\n")
	}
	sb.WriteString("</header>\n<main class=\"conversation\">\n")

	for _, msg := range snap.Messages {
		e.renderMessage(&sb, msg)
	}

	sb.WriteString("</main>\n<footer class=\"footer\">\n")
	fmt.Fprintf(&sb, "<p>Exported from <strong>askterm</strong> on %s</p>\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("</footer>\n</div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderMessage renders a single message.
func (e *HTMLExporter) renderMessage(sb *strings.Builder, msg model.Message) {
	class := string(msg.Role)
	if msg.Kind.IsNotice() {
		class += " notice"
	}
	fmt.Fprintf(sb, "<div class=\"message %s\">\n<div class=\"message-header\">\n", class)
	fmt.Fprintf(sb, "<span class=\"role-label\">%s</span>\n", html.EscapeString(msg.Role.DisplayName()))
	if e.options.IncludeTimestamps {
		fmt.Fprintf(sb, "<span class=\"timestamp\">%s</span>\n", msg.Clock())
	}
	sb.WriteString("</div>\n<div class=\"message-content\">\n")

	if msg.Role == model.RoleAssistant && !msg.Kind.IsNotice() {
		sb.WriteString(e.formatter.Format(e.pipeline.Render(msg.Text)))
	} else {
		sb.WriteString(plainParagraphs(msg.Text))
	}

	sb.WriteString("\n</div>\n</div>\n")
}

// plainParagraphs escapes text and keeps its line breaks.
func plainParagraphs(text string) string {
	var sb strings.Builder
	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(line)
		}
		fmt.Fprintf(&sb, "<p>%s</p>", strings.Join(lines, "<br>"))
	}
	return sb.String()
}

const pageCSS = `
* { box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 0; background: #1a1b26; color: #c0caf5; line-height: 1.6; }
.container { max-width: 900px; margin: 0 auto; background: #24283b; min-height: 100vh; }
.header { padding: 1.5rem 2rem; background: #414868; }
.header h1 { margin: 0 0 0.5rem; font-size: 1.5rem; }
.metadata { display: flex; flex-wrap: wrap; gap: 1rem; font-size: 0.85rem; color: #a9b1d6; }
.conversation { padding: 1.5rem 2rem; }
.message { margin-bottom: 1.25rem; padding: 0.75rem 1rem; border-radius: 8px; }
.message.user { background: #1f2335; margin-left: 15%; border: 1px solid #7aa2f7; }
.message.assistant { background: #1a1b26; margin-right: 15%; border: 1px solid #bb9af7; }
.message.notice { border-color: #e0af68; font-style: italic; }
.message-header { display: flex; gap: 0.75rem; font-size: 0.8rem; color: #565f89; margin-bottom: 0.25rem; }
.role-label { font-weight: bold; color: #a9b1d6; }
.message-content p { margin: 0.4rem 0; }
code { font-family: "SF Mono", Monaco, "Fira Code", monospace; }
.footer { padding: 1rem 2rem; font-size: 0.8rem; color: #565f89; text-align: center; }
`
