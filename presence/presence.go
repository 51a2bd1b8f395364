// Package presence tracks which identity owns which live connection.
package presence

import "sync"

// Handle is a reference to a live connection. The transport layer reports
// disconnects by handle rather than identity, so handles must resolve in
// both directions.
type Handle interface {
	HandleID() string
}

// Store maps identities to connection handles. A secondary index keyed by
// handle id makes the reverse lookup O(1) instead of scanning every entry.
// Both maps are always updated together under the same lock.
type Store struct {
	mu         sync.RWMutex
	byIdentity map[string]Handle
	byHandle   map[string]string
}

// New returns an empty presence store.
func New() *Store {
	return &Store{
		byIdentity: make(map[string]Handle),
		byHandle:   make(map[string]string),
	}
}

// Register maps identity to handle. The latest join wins: any previous
// handle for the identity is dropped along with its reverse entry, so a
// stale connection can no longer resolve back to the identity.
func (s *Store) Register(identity string, h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byIdentity[identity]; ok {
		delete(s.byHandle, old.HandleID())
	}
	s.byIdentity[identity] = h
	s.byHandle[h.HandleID()] = identity
}

// Lookup returns the live handle for an identity.
func (s *Store) Lookup(identity string) (Handle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.byIdentity[identity]
	return h, ok
}

// ReverseLookup resolves the identity owning a handle.
func (s *Store) ReverseLookup(handleID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.byHandle[handleID]
	return identity, ok
}

// Remove deletes the identity's mapping. No-op if absent.
func (s *Store) Remove(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.byIdentity[identity]; ok {
		delete(s.byHandle, h.HandleID())
		delete(s.byIdentity, identity)
	}
}

// Len returns the number of registered identities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byIdentity)
}
