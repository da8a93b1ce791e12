// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// ROLE / KIND TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{Role("other"), "other"},
	}

	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestKind_IsNotice(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindUser, false},
		{KindGreeting, false},
		{KindReply, false},
		{KindNoReply, true},
		{KindFallback, true},
	}

	for _, tt := range tests {
		if got := tt.kind.IsNotice(); got != tt.want {
			t.Errorf("%q.IsNotice() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	before := time.Now()
	msg := NewUserMessage("hello")

	if msg.Role != RoleUser || msg.Kind != KindUser {
		t.Errorf("role/kind = %s/%s, want user/user", msg.Role, msg.Kind)
	}
	if msg.Text != "hello" {
		t.Errorf("Text = %q", msg.Text)
	}
	if !strings.HasPrefix(msg.ID, "msg_") || len(msg.ID) != len("msg_")+16 {
		t.Errorf("unexpected ID format %q", msg.ID)
	}
	if msg.Timestamp.Before(before) {
		t.Errorf("timestamp %v predates creation %v", msg.Timestamp, before)
	}
}

func TestMessage_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewUserMessage("x").ID
		if seen[id] {
			t.Fatalf("duplicate ID %q after %d messages", id, i)
		}
		seen[id] = true
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("first line\nsecond line that keeps going")

	if got := msg.Preview(100); got != "first line second line that keeps going" {
		t.Errorf("Preview(100) = %q", got)
	}
	if got := msg.Preview(10); got != "first l..." {
		t.Errorf("Preview(10) = %q", got)
	}
}

func TestMessage_Clock(t *testing.T) {
	ts := time.Date(2025, 3, 4, 9, 7, 0, 0, time.Local)
	msg := NewMessageAt(RoleAssistant, KindReply, "hi", ts)
	if got := msg.Clock(); got != "09:07" {
		t.Errorf("Clock() = %q, want 09:07", got)
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendPreservesOrder(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewAssistantMessage(KindGreeting, "welcome"))
	tr.Append(NewUserMessage("q1"))
	tr.Append(NewAssistantMessage(KindReply, "a1"))

	if tr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tr.Len())
	}

	want := []string{"welcome", "q1", "a1"}
	for i, msg := range tr.Snapshot() {
		if msg.Text != want[i] {
			t.Errorf("message %d = %q, want %q", i, msg.Text, want[i])
		}
	}
}

func TestTranscript_SnapshotIsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewUserMessage("original"))

	snap := tr.Snapshot()
	snap[0].Text = "mutated"
	snap = append(snap, NewUserMessage("extra"))

	if tr.Len() != 1 {
		t.Errorf("Len() = %d after mutating snapshot, want 1", tr.Len())
	}
	if got, _ := tr.Last(); got.Text != "original" {
		t.Errorf("stored text = %q, want original", got.Text)
	}
}

func TestTranscript_LastOf(t *testing.T) {
	tr := NewTranscript()

	if _, ok := tr.Last(); ok {
		t.Error("Last() on empty transcript reported ok")
	}

	tr.Append(NewAssistantMessage(KindGreeting, "hello"))
	tr.Append(NewUserMessage("question"))

	got, ok := tr.LastOf(RoleAssistant)
	if !ok || got.Text != "hello" {
		t.Errorf("LastOf(assistant) = %q, %v", got.Text, ok)
	}
	got, ok = tr.LastOf(RoleUser)
	if !ok || got.Text != "question" {
		t.Errorf("LastOf(user) = %q, %v", got.Text, ok)
	}
	if tr.Count(RoleUser) != 1 || tr.Count(RoleAssistant) != 1 {
		t.Errorf("Count mismatch: user=%d assistant=%d", tr.Count(RoleUser), tr.Count(RoleAssistant))
	}
}

func TestTranscript_Title(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewAssistantMessage(KindGreeting, "hello"))
	if got := tr.Title(); got != "New conversation" {
		t.Errorf("Title() = %q", got)
	}

	tr.Append(NewUserMessage("How do I reverse a list in Go?"))
	if got := tr.Title(); got != "How do I reverse a list in Go?" {
		t.Errorf("Title() = %q", got)
	}
}
