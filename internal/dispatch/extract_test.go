// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jeranaias/askterm/internal/client"
)

func TestExtractReply(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      string
		wantFound bool
	}{
		{"answer", `{"answer":"42"}`, "42", true},
		{"message", `{"message":"m"}`, "m", true},
		{"text", `{"text":"t"}`, "t", true},
		{"answer beats message", `{"message":"m","answer":"a"}`, "a", true},
		{"message beats text", `{"text":"t","message":"m"}`, "m", true},
		{"empty answer falls through", `{"answer":"","message":"m"}`, "m", true},
		{"null answer falls through", `{"answer":null,"text":"t"}`, "t", true},
		{"false falls through", `{"answer":false,"text":"t"}`, "t", true},
		{"zero falls through", `{"answer":0,"text":"t"}`, "t", true},
		{"object skipped", `{"answer":{"x":1},"text":"t"}`, "t", true},
		{"array skipped", `{"answer":["x"]}`, "", false},
		{"number", `{"answer":42}`, "42", true},
		{"number keeps spelling", `{"answer":1.50}`, "1.50", true},
		{"true", `{"message":true}`, "true", true},
		{"whitespace string counts", `{"answer":"  "}`, "  ", true},
		{"other fields ignored", `{"reply":"r","result":"x"}`, "", false},
		{"empty object", `{}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp client.Response
			if err := json.Unmarshal([]byte(tt.body), &resp); err != nil {
				t.Fatalf("bad fixture: %v", err)
			}

			got, found := ExtractReply(resp)
			if got != tt.want || found != tt.wantFound {
				t.Errorf("ExtractReply(%s) = %q, %v; want %q, %v", tt.body, got, found, tt.want, tt.wantFound)
			}
		})
	}
}

func TestReplyFields(t *testing.T) {
	want := []string{"answer", "message", "text"}
	if diff := cmp.Diff(want, ReplyFields()); diff != "" {
		t.Errorf("ReplyFields() mismatch (-want +got):\n%s", diff)
	}

	// Callers cannot reorder the precedence.
	f := ReplyFields()
	f[0] = "text"
	if replyFields[0] != "answer" {
		t.Error("ReplyFields exposed internal slice")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateIdle, "idle"},
		{StateSending, "sending"},
		{StateResolved, "resolved"},
		{StateFailed, "failed"},
		{State(9), "state(9)"},
	}

	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.s), got, tt.want)
		}
	}
}
