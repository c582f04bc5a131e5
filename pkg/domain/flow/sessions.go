package flow

import (
	"fmt"
	"sync"
)

// Session is one admin's dialog: the machine plus the data gathered so far.
type Session struct {
	Machine *PromptMachine
	Context PromptContext
}

// Sessions keeps per-admin dialog state keyed by the admin's id. It replaces
// ambient globals: the composition root owns one instance and hands it to the
// handler set.
type Sessions struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[int64]*Session)}
}

// Get returns the admin's session, creating an idle one on first use.
func (s *Sessions) Get(adminID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[adminID]; ok {
		return session, nil
	}

	machine, err := NewPromptMachine(adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for admin %d: %w", adminID, err)
	}
	session := &Session{Machine: machine, Context: PromptContext{AdminID: adminID}}
	s.sessions[adminID] = session
	return session, nil
}

// Reset discards the admin's session. The next Get starts idle again.
func (s *Sessions) Reset(adminID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, adminID)
}
