package driving

import (
	"context"
	"net/http"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
)

// AuthService drives the authorization-code flow end to end and guarantees
// every outbound authenticated request carries a valid bearer token.
//
// Callers distinguish "not yet authenticated" (check IsAuthenticated) from
// "tried and failed" (inspect the returned error).
type AuthService interface {
	// InitiateAuth runs the full browser consent flow: configuration check,
	// CSRF state generation, callback listener, browser launch, code
	// exchange. Returns nil once credentials are stored. The flow races the
	// provider callback against caller cancellation and a fixed five-minute
	// timeout; exactly one outcome wins.
	InitiateAuth(ctx context.Context) error

	// HandleCallback verifies the echoed state against the single-use nonce
	// and exchanges the code for tokens. Exposed for the direct-invocation
	// callback context; InitiateAuth uses it internally.
	HandleCallback(ctx context.Context, code, state string) error

	// Request performs an authenticated HTTP call with the one-retry-on-401
	// policy. The only sanctioned path for Calendar I/O.
	Request(ctx context.Context, method, url string, body []byte) (*http.Response, error)

	// RefreshAccessToken forces a refresh now. A 400/401 from the token
	// endpoint clears all credentials and returns domain.ErrReauthRequired.
	RefreshAccessToken(ctx context.Context) error

	// IsAuthenticated is a synchronous, side-effect-free capability check.
	IsAuthenticated() bool

	// Phase returns the current state of the authorization flow.
	Phase() domain.AuthPhase

	// SignOut clears all credential state.
	SignOut() error
}
