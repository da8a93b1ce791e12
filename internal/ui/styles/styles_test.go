// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"
)

func TestNewTheme(t *testing.T) {
	for name, theme := range map[string]*Theme{"adaptive": NewTheme(), "plain": NewPlainTheme()} {
		t.Run(name, func(t *testing.T) {
			if theme == nil {
				t.Fatal("theme is nil")
			}
			for _, s := range []struct {
				name string
				out  string
			}{
				{"UserBubble", theme.UserBubble.Render("test")},
				{"AssistantBubble", theme.AssistantBubble.Render("test")},
				{"NoticeBubble", theme.NoticeBubble.Render("test")},
				{"Footer", theme.Footer.Render("test")},
			} {
				if !strings.Contains(s.out, "test") {
					t.Errorf("%s.Render lost its content: %q", s.name, s.out)
				}
			}
		})
	}
}

func TestLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	theme := NewPlainTheme()
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: GetLayoutMode() = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestBubbleWidth(t *testing.T) {
	theme := NewPlainTheme()
	for _, w := range []int{12, 40, 80, 120, 200} {
		theme.SetSize(w, 24)
		bw := theme.BubbleWidth()
		if bw <= 0 || bw > w {
			t.Errorf("width %d: BubbleWidth() = %d, want in (0, %d]", w, bw, w)
		}
	}
}

func TestSpinnerConfig(t *testing.T) {
	if got := DotsSpinner.Duration(); got != time.Second/6 {
		t.Errorf("Duration() = %v", got)
	}
	if got := (SpinnerConfig{}).Duration(); got != time.Second {
		t.Errorf("zero FPS Duration() = %v, want 1s", got)
	}
	s := LineSpinner.Spinner()
	if len(s.Frames) != 4 || s.FPS != time.Second/10 {
		t.Errorf("Spinner() = %+v", s)
	}
}

func TestRenderStatus(t *testing.T) {
	if out := RenderError("boom"); !strings.Contains(out, "[X] boom") {
		t.Errorf("RenderError = %q", out)
	}
	if out := RenderSuccess("done"); !strings.Contains(out, "[OK] done") {
		t.Errorf("RenderSuccess = %q", out)
	}
}
