package server

import (
	"sync"

	"github.com/google/uuid"
)

const sessionBuffer = 16

// Session is one live client connection and the handle the presence store
// tracks. A session starts unidentified and becomes identified on join;
// once closed it never comes back.
type Session struct {
	id string

	mu       sync.RWMutex
	identity string
	role     string

	// Events is drained by the connection's write pump.
	Events chan *Envelope
	// Kill tells the write pump to close the connection.
	Kill chan bool

	killOnce sync.Once
}

// NewSession returns an unidentified session.
func NewSession() *Session {
	return &Session{
		id:     uuid.New().String(),
		Events: make(chan *Envelope, sessionBuffer),
		Kill:   make(chan bool),
	}
}

// HandleID implements presence.Handle.
func (s *Session) HandleID() string {
	return s.id
}

// Identify marks the session as joined.
func (s *Session) Identify(identity, role string) {
	s.mu.Lock()
	s.identity = identity
	s.role = role
	s.mu.Unlock()
}

// Identity returns ("", false) until the session has joined.
func (s *Session) Identity() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.identity != ""
}

// Role returns the session's role, empty until identified.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Send queues an envelope without blocking. A slow or dead client drops
// messages rather than stalling the relay.
func (s *Session) Send(e *Envelope) bool {
	select {
	case s.Events <- e:
		return true
	default:
		return false
	}
}

// Close signals the write pump to shut the connection down. Safe to call
// more than once.
func (s *Session) Close() {
	s.killOnce.Do(func() {
		close(s.Kill)
	})
}
