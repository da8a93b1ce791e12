// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/binary"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/askterm/internal/model"
)

// IDPrefix starts every session ID.
const IDPrefix = "chat_"

var idPattern = regexp.MustCompile(`^chat_[0-9a-z]+_[0-9]+$`)

// =============================================================================
// SESSION IDENTITY
// =============================================================================

// NewID generates a session ID of the form chat_<random base36>_<unix ms>.
// It never fails: if the random source is unavailable the random segment is
// derived from the clock instead.
func NewID() string {
	return newID(uuid.NewRandom, time.Now)
}

func newID(random func() (uuid.UUID, error), now func() time.Time) string {
	ts := now()
	var seg string
	if u, err := random(); err == nil {
		seg = strconv.FormatUint(binary.BigEndian.Uint64(u[8:]), 36)
	} else {
		seg = strconv.FormatInt(ts.UnixNano(), 36)
	}
	return IDPrefix + seg + "_" + strconv.FormatInt(ts.UnixMilli(), 10)
}

// ValidID reports whether id has the session ID shape.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one conversation: a fixed identifier plus its transcript.
//
// The transcript is mutated only by the dispatcher driving the session.
// Activity timestamps are guarded so status can be read from any goroutine.
type Session struct {
	id         string
	startTime  time.Time
	transcript *model.Transcript

	mu           sync.Mutex
	lastActivity time.Time
}

// New creates a session with a fresh ID and a transcript containing a
// single greeting from the assistant. An empty greeting seeds nothing.
func New(greeting string) *Session {
	return NewWithID(NewID(), greeting)
}

// NewWithID creates a session with a caller-supplied ID.
func NewWithID(id, greeting string) *Session {
	now := time.Now()
	s := &Session{
		id:           id,
		startTime:    now,
		lastActivity: now,
		transcript:   model.NewTranscript(),
	}
	if greeting != "" {
		s.transcript.Append(model.NewMessageAt(model.RoleAssistant, model.KindGreeting, greeting, now))
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// StartTime returns when the session was created.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Transcript returns the session transcript.
func (s *Session) Transcript() *model.Transcript {
	return s.transcript
}

// RecordActivity marks the session as active now.
func (s *Session) RecordActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status is a point-in-time summary of the session.
type Status struct {
	SessionID    string
	StartTime    time.Time
	Duration     time.Duration
	IdleTime     time.Duration
	Messages     int
	UserMessages int
}

// Status returns the current session status.
func (s *Session) Status() Status {
	s.mu.Lock()
	last := s.lastActivity
	s.mu.Unlock()

	now := time.Now()
	return Status{
		SessionID:    s.id,
		StartTime:    s.startTime,
		Duration:     now.Sub(s.startTime),
		IdleTime:     now.Sub(last),
		Messages:     s.transcript.Len(),
		UserMessages: s.transcript.Count(model.RoleUser),
	}
}
