package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bikeflow-data/internal/surface"
	"github.com/bikeflow-data/internal/traffic"
)

// Session is one viewer's slider and map state
type Session struct {
	ID        string
	View      *traffic.ViewState
	Canvas    *surface.Canvas
	CreatedAt time.Time
}

// Sessions is the registry of open viewer sessions
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session)}
}

// Add registers a session under a fresh id
func (s *Sessions) Add(view *traffic.ViewState, canvas *surface.Canvas) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		View:      view,
		Canvas:    canvas,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Remove deletes a session and reports whether it existed
func (s *Sessions) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
