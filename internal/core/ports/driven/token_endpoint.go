package driven

import (
	"context"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
)

// TokenGrant is the decoded body of a successful token-endpoint response.
// The session controller validates it and computes the absolute expiry; the
// adapter only decodes.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	ExpiresIn    int
}

// TokenEndpoint performs the two token-endpoint grants against the provider.
//
// Refresh must return an error wrapping domain.ErrReauthRequired when the
// endpoint answers 400 or 401 - that means the refresh token itself is dead
// and can never heal. Any other failure (network, 5xx) is transient and must
// not carry that sentinel.
type TokenEndpoint interface {
	// AuthCodeURL builds the authorization URL with the exact parameter
	// set: response type "code", the minimal calendar scopes,
	// access_type=offline, prompt=consent (forcing refresh-token issuance
	// on repeat consent), the CSRF state, and the redirect URI.
	AuthCodeURL(app domain.OAuthApp, state, redirectURI string) string

	// Exchange swaps an authorization code for tokens using the
	// authorization_code grant. The redirect URI must be the exact one used
	// in the authorization request; the provider validates equality.
	Exchange(ctx context.Context, app domain.OAuthApp, code, redirectURI string) (*TokenGrant, error)

	// Refresh mints a new access token using the refresh_token grant.
	Refresh(ctx context.Context, app domain.OAuthApp, refreshToken string) (*TokenGrant, error)
}
