package domain

// AuthPhase is the logical state of the authorization flow. It is transient,
// derived state owned by the session controller, never persisted.
type AuthPhase int

const (
	// PhaseUnauthenticated means no valid TokenSet is held.
	PhaseUnauthenticated AuthPhase = iota
	// PhaseAwaitingBrowser means the consent page is open and the flow is
	// waiting for the provider to redirect back with a code.
	PhaseAwaitingBrowser
	// PhaseExchangingCode means a code was received and state verified, and
	// the token exchange is in flight.
	PhaseExchangingCode
	// PhaseAuthenticated means a valid TokenSet is present.
	PhaseAuthenticated
	// PhaseRefreshing means a token refresh request is in flight.
	PhaseRefreshing
)

// String returns a human-readable phase name.
func (p AuthPhase) String() string {
	switch p {
	case PhaseAwaitingBrowser:
		return "awaiting-browser"
	case PhaseExchangingCode:
		return "exchanging-code"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseRefreshing:
		return "refreshing"
	default:
		return "unauthenticated"
	}
}
