// Package memory keeps web sessions in process memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/louisbranch/bookstore/internal/services/web/session"
)

// Store is a thread-safe in-memory session store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
	now      func() time.Time
}

var _ session.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{sessions: make(map[string]session.Session), now: time.Now}
}

// Get returns a copy of the session, or session.ErrNotFound if missing or expired.
func (s *Store) Get(_ context.Context, sessionID string) (*session.Session, error) {
	s.mu.RLock()
	stored, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, session.ErrNotFound
	}
	if stored.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, session.ErrNotFound
	}
	return &stored, nil
}

// Save stores a copy of sess.
func (s *Store) Save(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = *sess
	s.mu.Unlock()
	return nil
}

// Delete removes a session by ID.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Len returns the number of held sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
