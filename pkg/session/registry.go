package session

import (
	"sync"
	"time"
)

// Registry tracks active sessions keyed by call ID.
type Registry struct {
	mu     sync.RWMutex
	byCall map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byCall: make(map[string]*Session)}
}

// Create returns the session for the call, creating it if needed.
func (r *Registry) Create(callID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byCall[callID]; ok {
		return s
	}
	s := New(callID)
	r.byCall[callID] = s
	return s
}

// Get returns the session for the call, if present.
func (r *Registry) Get(callID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byCall[callID]
	return s, ok
}

// Delete removes the session for the call.
func (r *Registry) Delete(callID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byCall, callID)
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCall)
}

// Sweep removes sessions idle longer than maxIdle and returns how many
// were removed. Run periodically to clean up calls that never closed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	threshold := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.byCall {
		if s.IdleSince().Before(threshold) {
			delete(r.byCall, id)
			removed++
		}
	}
	return removed
}
