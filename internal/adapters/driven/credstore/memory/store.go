// Package memory implements an in-memory TokenStore for testing.
package memory

import (
	"sync"
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.TokenStore = (*Store)(nil)

// Store is an in-memory implementation of driven.TokenStore. It mirrors the
// session store's contract, including clearing on a failed save.
type Store struct {
	mu        sync.Mutex
	ts        *domain.TokenSet
	persisted *domain.TokenSet
	nonce     string
	hasNonce  bool

	// SaveErr, when set, makes Save fail. Lets tests exercise the
	// clear-on-failed-persist path.
	SaveErr error
}

// NewStore creates an empty in-memory token store.
func NewStore() *Store {
	return &Store{}
}

// Load promotes the "persisted" copy into memory, applying the same
// fail-closed validation as the session store.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.persisted.Valid(time.Now()) {
		s.persisted = nil
		s.ts = nil
		return nil
	}
	s.ts = s.persisted.Clone()
	return nil
}

// Save stores the TokenSet, clearing memory on a simulated write failure.
func (s *Store) Save(ts *domain.TokenSet) error {
	if ts == nil {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		s.ts = nil
		s.persisted = nil
		return s.SaveErr
	}
	s.ts = ts.Clone()
	s.persisted = ts.Clone()
	return nil
}

// Current returns a copy of the in-memory TokenSet, or nil if absent.
func (s *Store) Current() *domain.TokenSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ts.Clone()
}

// IsAuthenticated reports whether a valid TokenSet is held at now.
func (s *Store) IsAuthenticated(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ts.Valid(now)
}

// Clear erases all credential state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ts.Zero()
	s.ts = nil
	s.persisted = nil
	s.nonce = ""
	s.hasNonce = false
	return nil
}

// SaveState stores the single-use CSRF nonce.
func (s *Store) SaveState(nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonce = nonce
	s.hasNonce = true
	return nil
}

// TakeState returns and deletes the stored nonce.
func (s *Store) TakeState() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasNonce {
		return "", false
	}
	nonce := s.nonce
	s.nonce = ""
	s.hasNonce = false
	return nonce, true
}

// Persisted returns the "durable" copy, letting tests assert what survived.
func (s *Store) Persisted() *domain.TokenSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted.Clone()
}

// Close clears in-memory state.
func (s *Store) Close() error {
	return s.Clear()
}
