package driven

import "context"

// TokenProvider supplies valid access tokens to infrastructure that cannot
// go through the request wrapper, such as the oauth2.TokenSource glue used
// for the userinfo fetch. Implementations refresh transparently; the token
// itself still never reaches UI callers.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing first if the
	// current one is inside the expiry buffer.
	GetToken(ctx context.Context) (string, error)
}
