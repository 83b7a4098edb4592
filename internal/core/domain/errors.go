package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Authentication Errors.

	// ErrConfigMissing indicates the OAuth client id or secret is not
	// configured. Fatal and non-retryable; surfaced before any round trip.
	ErrConfigMissing = errors.New("oauth client credentials not configured")

	// ErrBrowserBlocked indicates the consent page could not be opened.
	// Callers must surface this as an actionable message, not a silent no-op.
	ErrBrowserBlocked = errors.New("could not open browser for authorization")

	// ErrAuthTimeout indicates the authorization flow timed out waiting for
	// the provider callback. The user may retry freely.
	ErrAuthTimeout = errors.New("timed out waiting for authorization")

	// ErrAuthCancelled indicates the user abandoned the authorization flow.
	ErrAuthCancelled = errors.New("authorization cancelled")

	// ErrStateMismatch indicates the callback state did not match the stored
	// nonce. Treated as a potential forged callback; never retried silently.
	ErrStateMismatch = errors.New("oauth state mismatch")

	// ErrMalformedTokenResponse indicates the token endpoint returned a
	// response missing access_token or refresh_token. A protocol violation,
	// not a retryable error.
	ErrMalformedTokenResponse = errors.New("malformed token response")

	// ErrReauthRequired indicates the refresh token was rejected and all
	// credentials were cleared. The user must sign in again; distinct from a
	// transient network failure.
	ErrReauthRequired = errors.New("re-authentication required")

	// ErrNotAuthenticated indicates no TokenSet is held. Absence is a valid
	// state for stores; services return this when an authenticated call is
	// attempted without credentials.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTokenRefreshFailed indicates a transient refresh failure. The
	// stored credentials are left intact.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// API Errors.

	// ErrRateLimited indicates the Calendar API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
