package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullTokenSet(expiresAt int64) *TokenSet {
	return &TokenSet{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		TokenType:    "Bearer",
		Scope:        ScopeCalendarReadonly + " " + ScopeCalendarEvents,
		ExpiresAt:    expiresAt,
	}
}

// TestNewTokenSet_ExpiryDerivedFromIssueTime verifies the absolute deadline
// is always issued_at + expires_in, never a server-supplied absolute value.
func TestNewTokenSet_ExpiryDerivedFromIssueTime(t *testing.T) {
	issuedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	ts := NewTokenSet("access-abc", "refresh-xyz", "Bearer", ScopeCalendarEvents, 3600, issuedAt)

	assert.Equal(t, issuedAt.UnixMilli()+3_600_000, ts.ExpiresAt)
}

func TestTokenSet_Complete(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		mutate func(*TokenSet)
		want   bool
	}{
		{"all fields", func(*TokenSet) {}, true},
		{"missing access token", func(ts *TokenSet) { ts.AccessToken = "" }, false},
		{"missing refresh token", func(ts *TokenSet) { ts.RefreshToken = "" }, false},
		{"missing token type", func(ts *TokenSet) { ts.TokenType = "" }, false},
		{"missing scope", func(ts *TokenSet) { ts.Scope = "" }, false},
		{"missing expiry", func(ts *TokenSet) { ts.ExpiresAt = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := fullTokenSet(now.Add(time.Hour).UnixMilli())
			tt.mutate(ts)
			assert.Equal(t, tt.want, ts.Complete())
		})
	}
}

func TestTokenSet_Complete_Nil(t *testing.T) {
	var ts *TokenSet
	assert.False(t, ts.Complete())
}

func TestTokenSet_Valid(t *testing.T) {
	now := time.Now()

	valid := fullTokenSet(now.Add(time.Hour).UnixMilli())
	assert.True(t, valid.Valid(now))

	expired := fullTokenSet(now.Add(-time.Second).UnixMilli())
	assert.False(t, expired.Valid(now))

	partial := fullTokenSet(now.Add(time.Hour).UnixMilli())
	partial.RefreshToken = ""
	assert.False(t, partial.Valid(now))
}

func TestTokenSet_ExpiresWithin(t *testing.T) {
	now := time.Now()
	buffer := time.Minute

	// Expiry well beyond the buffer: no refresh needed.
	ts := fullTokenSet(now.Add(time.Hour).UnixMilli())
	assert.False(t, ts.ExpiresWithin(now, buffer))

	// Expiry inside the buffer window.
	ts = fullTokenSet(now.Add(30 * time.Second).UnixMilli())
	assert.True(t, ts.ExpiresWithin(now, buffer))

	// Already expired.
	ts = fullTokenSet(now.Add(-time.Second).UnixMilli())
	assert.True(t, ts.ExpiresWithin(now, buffer))

	// Exactly at the buffer boundary counts as expiring.
	ts = fullTokenSet(now.Add(buffer).UnixMilli())
	assert.True(t, ts.ExpiresWithin(now, buffer))
}

// TestTokenSet_Rotate verifies a refresh replaces only the access token and
// expiry, preserving the refresh token.
func TestTokenSet_Rotate(t *testing.T) {
	issuedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	ts := fullTokenSet(issuedAt.UnixMilli())

	refreshedAt := issuedAt.Add(50 * time.Minute)
	ts.Rotate("access-new", 3600, refreshedAt)

	assert.Equal(t, "access-new", ts.AccessToken)
	assert.Equal(t, "refresh-xyz", ts.RefreshToken)
	assert.Equal(t, refreshedAt.UnixMilli()+3_600_000, ts.ExpiresAt)
}

func TestTokenSet_Clone(t *testing.T) {
	ts := fullTokenSet(time.Now().Add(time.Hour).UnixMilli())

	clone := ts.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, *ts, *clone)

	// Mutating the clone must not affect the original.
	clone.AccessToken = "mutated"
	assert.Equal(t, "access-abc", ts.AccessToken)
}

func TestTokenSet_Zero(t *testing.T) {
	ts := fullTokenSet(time.Now().Add(time.Hour).UnixMilli())

	ts.Zero()

	assert.Empty(t, ts.AccessToken)
	assert.Empty(t, ts.RefreshToken)
	assert.Empty(t, ts.TokenType)
	assert.Empty(t, ts.Scope)
	assert.Zero(t, ts.ExpiresAt)
	assert.False(t, ts.Complete())
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		title string
		want  Category
	}{
		{"Morning walk", CategoryMovement},
		{"Yoga session", CategoryMovement},
		{"Meditation", CategoryMindfulness},
		{"Box breathing", CategoryMindfulness},
		{"Afternoon nap", CategoryRest},
		{"Coffee catch up", CategorySocial},
		{"Something else", CategoryGeneral},
		{"", CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.title))
		})
	}
}
