package service

import "sync"

// Pairing is one outstanding (authorization URL, CSRF state) pair for a
// provider. Issuing a new pairing for the same provider replaces any
// prior outstanding one.
type Pairing struct {
	AuthURL string
	State   string
}

// StateStore holds the process-local CSRF pairings, one slot per
// provider. It is owned by whoever constructs it and injected into the
// OAuth delegate; restart discards all pairings.
type StateStore struct {
	mu       sync.RWMutex
	pairings map[string]Pairing
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{pairings: make(map[string]Pairing)}
}

// Put records the outstanding pairing for a provider, replacing any
// previous one.
func (s *StateStore) Put(provider string, p Pairing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairings[provider] = p
}

// Get returns the outstanding pairing for a provider.
func (s *StateStore) Get(provider string) (Pairing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pairings[provider]
	return p, ok
}

// Remove drops the pairing for a provider.
func (s *StateStore) Remove(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairings, provider)
}
