package driven

import (
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
)

// TokenStore owns the TokenSet: it holds, validates, persists, and erases it,
// and answers authentication-capability queries. The TokenSet is never handed
// to UI callers directly, only through the session controller.
//
// Implementations must be session-scoped: the persisted copy must not
// outlive the process session, and must never be upgraded to durable
// storage. Wellness data is durable; credentials are not.
type TokenStore interface {
	// Load reads the persisted TokenSet into memory. It fails closed: a
	// record missing any field, or one whose expiry has already elapsed, is
	// deleted and the in-memory state set to absent. Absence is represented,
	// not returned as an error; the error covers I/O failures only.
	Load() error

	// Save persists the full TokenSet and replaces the in-memory copy. If
	// the write fails, the in-memory copy is cleared too - the system never
	// proceeds with a token it could not persist.
	Save(ts *domain.TokenSet) error

	// Current returns a copy of the in-memory TokenSet, or nil if absent.
	// Readers never observe a partially written set.
	Current() *domain.TokenSet

	// IsAuthenticated reports whether a TokenSet is present and unexpired at
	// now. A point-in-time check with no side effects; it never refreshes.
	IsAuthenticated(now time.Time) bool

	// Clear zeroes the in-memory secrets, deletes the persisted copy, and
	// discards any stored authorization state nonce.
	Clear() error

	// SaveState stores the single-use CSRF nonce for the authorization
	// attempt in flight, keyed separately from the TokenSet.
	SaveState(nonce string) error

	// TakeState returns the stored nonce and deletes it. The second call for
	// the same attempt returns ok == false; a nonce is never verified twice.
	TakeState() (nonce string, ok bool)

	// Close releases session-scoped resources, clearing in-memory secrets.
	// The process teardown contract replacing an implicit unload hook.
	Close() error
}
