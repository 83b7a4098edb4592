package driven

import "context"

// CallbackListener is the local redirect surface for one authorization
// attempt. It listens on the loopback interface, validates the echoed state,
// and relays the authorization code to the waiting controller.
type CallbackListener interface {
	// Start begins listening. The redirect URI is only meaningful after
	// Start has returned.
	Start() error

	// RedirectURI returns the URI the provider should redirect to, derived
	// from the actual listen address plus the fixed callback path.
	RedirectURI() string

	// WaitForCode blocks until the provider redirects back with a code, the
	// context is cancelled, or the listener's own error path fires.
	WaitForCode(ctx context.Context) (code string, err error)

	// Stop tears the listener down. Safe to call more than once and after
	// any WaitForCode outcome.
	Stop() error
}

// ListenerFactory creates a CallbackListener primed with the CSRF state it
// must expect. Injectable so the session controller can be tested without
// opening sockets.
type ListenerFactory func(expectedState string) (CallbackListener, error)

// BrowserOpener opens the user's browser at the authorization URL. A failure
// means the consent page never appeared and must surface as an actionable
// error, not a silent no-op.
type BrowserOpener func(url string) error
