// Package session holds per-call mutable state.
//
// Each ongoing call owns exactly one Session; it is created when the call's
// websocket connects and dropped when the call ends. Nothing in here is
// process-global, so concurrent calls never observe each other's state.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the cross-turn state of one ongoing call.
type Session struct {
	// ID is a process-unique identifier for logging.
	ID uuid.UUID

	// CallID is the transport's call identifier.
	CallID string

	mu           sync.Mutex
	phone        string
	startedAt    time.Time
	lastActivity time.Time
}

// New creates a session for a call.
func New(callID string) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New(),
		CallID:       callID,
		startedAt:    now,
		lastActivity: now,
	}
}

// Phone returns the caller's phone number, or "" if not yet learned.
func (s *Session) Phone() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phone
}

// SetPhone records the caller's phone number once learned from the transport.
func (s *Session) SetPhone(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phone = phone
}

// PhoneKnown reports whether a phone number has been learned.
func (s *Session) PhoneKnown() bool {
	return s.Phone() != ""
}

// Touch updates the last-activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// IdleSince returns the last-activity timestamp.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}
