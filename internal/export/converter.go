// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"time"

	"github.com/jeranaias/askterm/internal/model"
	"github.com/jeranaias/askterm/internal/session"
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a point-in-time copy of a conversation.
type Snapshot struct {
	SessionID string          `json:"session_id"`
	Title     string          `json:"title"`
	StartedAt time.Time       `json:"started_at"`
	Messages  []model.Message `json:"messages"`
}

// FromSession copies the session's transcript. An empty title falls back
// to the transcript's first user message.
func FromSession(sess *session.Session, title string) *Snapshot {
	if sess == nil {
		return nil
	}
	if title == "" {
		title = sess.Transcript().Title()
	}
	return &Snapshot{
		SessionID: sess.ID(),
		Title:     title,
		StartedAt: sess.StartTime(),
		Messages:  sess.Transcript().Snapshot(),
	}
}

// validate checks the fields every exporter relies on.
func (s *Snapshot) validate() error {
	if s == nil {
		return ErrNilSnapshot
	}
	if len(s.Messages) == 0 {
		return ErrNoMessages
	}
	if s.StartedAt.IsZero() {
		return ErrNoStartTime
	}
	return nil
}

// displayTitle is the title used in headings and file names.
func (s *Snapshot) displayTitle() string {
	if s.Title == "" {
		return "Conversation"
	}
	return s.Title
}
