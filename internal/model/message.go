// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind records why a message was appended to the transcript.
type Kind string

const (
	// KindUser is text submitted by the user.
	KindUser Kind = "user"
	// KindGreeting is the assistant message that seeds every session.
	KindGreeting Kind = "greeting"
	// KindReply is reply text extracted from the answering service.
	KindReply Kind = "reply"
	// KindNoReply is the notice shown when the service answered without text.
	KindNoReply Kind = "no_reply"
	// KindFallback is the apology shown when the exchange failed.
	KindFallback Kind = "fallback"
)

// IsNotice reports whether the kind is locally generated text standing in
// for a reply.
func (k Kind) IsNotice() bool {
	return k == KindNoReply || k == KindFallback
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. Messages are values: once appended
// to a Transcript they are never modified.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, kind Kind, text string) Message {
	return NewMessageAt(role, kind, text, time.Now())
}

// NewMessageAt creates a message with an explicit timestamp.
func NewMessageAt(role Role, kind Kind, text string, ts time.Time) Message {
	return Message{
		ID:        generateID(),
		Role:      role,
		Kind:      kind,
		Text:      text,
		Timestamp: ts,
	}
}

// NewUserMessage creates a user message with the given text.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, KindUser, text)
}

// NewAssistantMessage creates an assistant message of the given kind.
func NewAssistantMessage(kind Kind, text string) Message {
	return NewMessage(RoleAssistant, kind, text)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Preview returns a truncated single-line preview of the message text.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			runes[i] = ' '
		}
	}
	if len(runes) <= maxLen {
		return string(runes)
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty reports whether the message has no text.
func (m Message) IsEmpty() bool {
	return len(m.Text) == 0
}

// Clock formats the timestamp as 24-hour HH:MM in local time.
func (m Message) Clock() string {
	return m.Timestamp.Local().Format("15:04")
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

var idFallback atomic.Uint64

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		n := idFallback.Add(1)
		return "msg_" + strconv.FormatInt(time.Now().UnixNano(), 16) + strconv.FormatUint(n, 16)
	}
	return "msg_" + hex.EncodeToString(bytes)
}
