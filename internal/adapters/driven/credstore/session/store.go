// Package session implements a session-scoped TokenStore. Credentials live
// in a per-process directory under the OS temp dir and are removed when the
// store is closed; they never survive into durable storage.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
	"github.com/restwell-app/restwell-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.TokenStore = (*Store)(nil)

const (
	tokenFile = "tokens.json"
	stateFile = "oauth-state"
)

// Store persists the TokenSet and the CSRF nonce as two session-scoped
// files. All writes are whole-file replacements; readers never observe a
// torn token.
type Store struct {
	mu  sync.Mutex
	dir string
	ts  *domain.TokenSet
}

// NewStore creates a session store. If dir is empty a fresh private
// directory is created under the OS temp dir; it belongs to this process
// session and is removed by Close.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		created, err := os.MkdirTemp("", "restwell-session-")
		if err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
		dir = created
	} else {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}
	return &Store{dir: dir}, nil
}

// Load reads the persisted TokenSet. It fails closed: malformed or expired
// records are deleted and memory set to absent. Absence is not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.tokenPath())
	if os.IsNotExist(err) {
		s.ts = nil
		return nil
	}
	if err != nil {
		s.ts = nil
		return fmt.Errorf("read tokens: %w", err)
	}

	var ts domain.TokenSet
	if err := json.Unmarshal(raw, &ts); err != nil {
		logger.Warn("credstore: discarding unreadable token record")
		s.discardLocked()
		return nil
	}
	if !ts.Valid(time.Now()) {
		logger.Debug("credstore: discarding incomplete or expired token record")
		s.discardLocked()
		return nil
	}

	s.ts = &ts
	return nil
}

// Save persists the full TokenSet and replaces the in-memory copy. On a
// write failure the in-memory copy is cleared as well: an unpersisted token
// would silently vanish on reload, leaving callers falsely authenticated.
func (s *Store) Save(ts *domain.TokenSet) error {
	if ts == nil {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(ts)
	if err != nil {
		s.discardLocked()
		return fmt.Errorf("serialise tokens: %w", err)
	}
	if err := os.WriteFile(s.tokenPath(), raw, 0600); err != nil {
		s.discardLocked()
		return fmt.Errorf("persist tokens: %w", err)
	}

	s.ts = ts.Clone()
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

// Clear erases the credentials: secrets are overwritten in memory before
// the reference is dropped, then both persisted keys are removed.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ts.Zero()
	s.ts = nil

	var firstErr error
	if err := os.Remove(s.tokenPath()); err != nil && !os.IsNotExist(err) {
		firstErr = fmt.Errorf("remove tokens: %w", err)
	}
	if err := os.Remove(s.statePath()); err != nil && !os.IsNotExist(err) && firstErr == nil {
		firstErr = fmt.Errorf("remove state: %w", err)
	}
	return firstErr
}

// SaveState stores the single-use CSRF nonce.
func (s *Store) SaveState(nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.statePath(), []byte(nonce), 0600); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// TakeState returns the stored nonce and deletes it. A second call finds
// nothing; a nonce is never verified twice.
func (s *Store) TakeState() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.statePath())
	_ = os.Remove(s.statePath())
	if err != nil || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

// Close clears in-memory secrets and removes the session directory. The
// persisted copy is session-scoped and must not outlive the process.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ts.Zero()
	s.ts = nil

	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove session dir: %w", err)
	}
	return nil
}

// Dir returns the session directory path.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) tokenPath() string {
	return filepath.Join(s.dir, tokenFile)
}

func (s *Store) statePath() string {
	return filepath.Join(s.dir, stateFile)
}

// discardLocked removes the persisted record and clears memory. Callers
// hold s.mu.
func (s *Store) discardLocked() {
	s.ts.Zero()
	s.ts = nil
	_ = os.Remove(s.tokenPath())
}
