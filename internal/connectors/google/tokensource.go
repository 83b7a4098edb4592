package google

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

// TokenSourceAdapter adapts the session controller's TokenProvider to
// oauth2.TokenSource, so standard oauth2 HTTP clients pull tokens through
// the controller's ensure-and-refresh path instead of managing their own.
type TokenSourceAdapter struct {
	provider driven.TokenProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a TokenProvider.
func NewTokenSource(ctx context.Context, provider driven.TokenProvider) oauth2.TokenSource {
	return &TokenSourceAdapter{
		provider: provider,
		ctx:      ctx,
	}
}

// Token implements oauth2.TokenSource.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
