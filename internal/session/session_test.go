// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/askterm/internal/model"
)

// =============================================================================
// ID TESTS
// =============================================================================

func TestNewID_Format(t *testing.T) {
	before := time.Now().UnixMilli()
	id := NewID()
	after := time.Now().UnixMilli()

	require.True(t, ValidID(id), "id %q does not match session shape", id)

	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "chat", parts[0])
	assert.NotEmpty(t, parts[1])

	ms, err := strconv.ParseInt(parts[2], 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ms, before)
	assert.LessOrEqual(t, ms, after)
}

func TestNewID_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate session ID %q", id)
		}
		seen[id] = true
	}
}

func TestNewID_RandomSourceFailure(t *testing.T) {
	fixed := time.UnixMilli(1718000000000)
	broken := func() (uuid.UUID, error) { return uuid.Nil, errors.New("entropy exhausted") }

	id := newID(broken, func() time.Time { return fixed })

	assert.True(t, ValidID(id), "fallback id %q has wrong shape", id)
	assert.True(t, strings.HasSuffix(id, "_1718000000000"), "id %q", id)
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"chat_k3j2h1_1718000000000", true},
		{"chat__1718000000000", false},
		{"sess_abc_123", false},
		{"chat_ABC_123", false},
		{"chat_abc_", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestNew_SeedsGreeting(t *testing.T) {
	s := New("Hello there")

	require.Equal(t, 1, s.Transcript().Len())
	msg, _ := s.Transcript().Last()
	assert.Equal(t, model.RoleAssistant, msg.Role)
	assert.Equal(t, model.KindGreeting, msg.Kind)
	assert.Equal(t, "Hello there", msg.Text)
}

func TestNew_EmptyGreeting(t *testing.T) {
	s := New("")
	assert.Equal(t, 0, s.Transcript().Len())
}

func TestSession_IDStable(t *testing.T) {
	s := New("hi")
	id := s.ID()
	s.Transcript().Append(model.NewUserMessage("q"))
	s.RecordActivity()
	assert.Equal(t, id, s.ID())
}

func TestSession_Status(t *testing.T) {
	s := NewWithID("chat_abc_1", "hi")
	s.Transcript().Append(model.NewUserMessage("q"))

	st := s.Status()
	assert.Equal(t, "chat_abc_1", st.SessionID)
	assert.Equal(t, 2, st.Messages)
	assert.Equal(t, 1, st.UserMessages)
	assert.GreaterOrEqual(t, st.Duration, time.Duration(0))
}
