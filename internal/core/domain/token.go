package domain

import "time"

// TokenSet holds the OAuth credentials issued by Google.
//
// A TokenSet is either fully populated or absent (nil). A set missing any
// field is treated as invalid and discarded by the stores, never repaired.
type TokenSet struct {
	// AccessToken is the short-lived bearer token sent on every API call.
	AccessToken string `json:"access_token"`
	// RefreshToken is the long-lived token used only to mint new access tokens.
	RefreshToken string `json:"refresh_token"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Scope is the space-delimited set of granted scopes.
	Scope string `json:"scope"`
	// ExpiresAt is the absolute expiry deadline in epoch milliseconds,
	// always recomputed locally from the server's expires_in.
	ExpiresAt int64 `json:"expires_at"`
}

// NewTokenSet builds a TokenSet from a token-endpoint response, computing
// the absolute expiry from the issue time and the server's expires_in
// seconds. The server value is never trusted as an absolute deadline.
func NewTokenSet(accessToken, refreshToken, tokenType, scope string, expiresIn int, issuedAt time.Time) *TokenSet {
	return &TokenSet{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
		Scope:        scope,
		ExpiresAt:    issuedAt.UnixMilli() + int64(expiresIn)*1000,
	}
}

// Complete returns true if every field of the set is populated.
func (t *TokenSet) Complete() bool {
	if t == nil {
		return false
	}
	return t.AccessToken != "" && t.RefreshToken != "" &&
		t.TokenType != "" && t.Scope != "" && t.ExpiresAt > 0
}

// Valid returns true if the set is complete and not yet expired at now.
func (t *TokenSet) Valid(now time.Time) bool {
	return t.Complete() && now.UnixMilli() < t.ExpiresAt
}

// ExpiresWithin returns true if now is within buffer of the expiry deadline
// (or already past it).
func (t *TokenSet) ExpiresWithin(now time.Time, buffer time.Duration) bool {
	if t == nil {
		return true
	}
	return now.UnixMilli() >= t.ExpiresAt-buffer.Milliseconds()
}

// Rotate replaces the access token and recomputes the expiry deadline after
// a refresh. The refresh token is retained unchanged; Google does not
// reissue it on refresh.
func (t *TokenSet) Rotate(accessToken string, expiresIn int, issuedAt time.Time) {
	t.AccessToken = accessToken
	t.ExpiresAt = issuedAt.UnixMilli() + int64(expiresIn)*1000
}

// Clone returns a copy so readers never observe a set mutated mid-write.
func (t *TokenSet) Clone() *TokenSet {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Zero overwrites the secret fields in place before the reference is
// dropped, so cleared credentials do not linger in memory.
func (t *TokenSet) Zero() {
	if t == nil {
		return
	}
	t.AccessToken = ""
	t.RefreshToken = ""
	t.TokenType = ""
	t.Scope = ""
	t.ExpiresAt = 0
}
