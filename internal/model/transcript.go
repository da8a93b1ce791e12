// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered message history of one session. Append is the
// only mutation: entries are never edited, reordered or removed.
//
// A Transcript is not safe for concurrent use. It is owned by the dispatcher
// that drives the session, and other readers take Snapshots.
type Transcript struct {
	messages []Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{messages: make([]Message, 0, 16)}
}

// Append adds msg to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Snapshot returns a copy of the messages in insertion order. The caller may
// keep or modify the slice freely.
func (t *Transcript) Snapshot() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// At returns the message at index i.
func (t *Transcript) At(i int) (Message, bool) {
	if i < 0 || i >= len(t.messages) {
		return Message{}, false
	}
	return t.messages[i], true
}

// Last returns the most recent message.
func (t *Transcript) Last() (Message, bool) {
	return t.At(len(t.messages) - 1)
}

// LastOf returns the most recent message authored by role.
func (t *Transcript) LastOf(role Role) (Message, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == role {
			return t.messages[i], true
		}
	}
	return Message{}, false
}

// Count returns the number of messages authored by role.
func (t *Transcript) Count(role Role) int {
	n := 0
	for _, m := range t.messages {
		if m.Role == role {
			n++
		}
	}
	return n
}

// Title derives a display title from the first user message.
func (t *Transcript) Title() string {
	for _, m := range t.messages {
		if m.Role == RoleUser {
			return m.Preview(50)
		}
	}
	return "New conversation"
}
