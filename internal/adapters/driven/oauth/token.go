// Package oauth implements the token-endpoint client for the Google OAuth
// authorization-code and refresh-token grants.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

// Ensure Endpoint implements the interface.
var _ driven.TokenEndpoint = (*Endpoint)(nil)

// Endpoint talks to the Google token endpoint. Endpoint URLs come from the
// OAuthApp config when overridden (tests), Google's published endpoints
// otherwise.
type Endpoint struct {
	client *http.Client
}

// NewEndpoint creates a token-endpoint client.
func NewEndpoint() *Endpoint {
	return &Endpoint{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthCodeURL builds the authorization URL. access_type=offline obtains a
// refresh token; prompt=consent forces refresh-token issuance even on
// repeat consent.
func (e *Endpoint) AuthCodeURL(app domain.OAuthApp, state, redirectURI string) string {
	cfg := oauth2.Config{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		Endpoint:     oauthEndpoint(app),
		RedirectURL:  redirectURI,
		Scopes:       app.Scopes(),
	}
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange swaps an authorization code for tokens.
func (e *Endpoint) Exchange(ctx context.Context, app domain.OAuthApp, code, redirectURI string) (*driven.TokenGrant, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", app.ClientID)
	data.Set("client_secret", app.ClientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", redirectURI)

	return e.post(ctx, tokenURL(app), data, false)
}

// Refresh mints a new access token. A 400 or 401 response means the refresh
// token itself is invalid; the returned error wraps
// domain.ErrReauthRequired so the controller can force sign-out.
func (e *Endpoint) Refresh(ctx context.Context, app domain.OAuthApp, refreshToken string) (*driven.TokenGrant, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", app.ClientID)
	data.Set("client_secret", app.ClientSecret)
	data.Set("refresh_token", refreshToken)

	return e.post(ctx, tokenURL(app), data, true)
}

// tokenResponse is the explicit schema for token-endpoint bodies, validated
// at the boundary.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
}

func (e *Endpoint) post(ctx context.Context, endpoint string, data url.Values, isRefresh bool) (*driven.TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if isRefresh && (resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: token endpoint returned %d", domain.ErrReauthRequired, resp.StatusCode)
		}

		var errResp struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("token error: %s - %s", errResp.Error, errResp.Description)
		}
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedTokenResponse, err)
	}

	return &driven.TokenGrant{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		TokenType:    body.TokenType,
		Scope:        body.Scope,
		ExpiresIn:    body.ExpiresIn,
	}, nil
}

func oauthEndpoint(app domain.OAuthApp) oauth2.Endpoint {
	ep := google.Endpoint
	if app.AuthURL != "" {
		ep.AuthURL = app.AuthURL
	}
	if app.TokenURL != "" {
		ep.TokenURL = app.TokenURL
	}
	return ep
}

func tokenURL(app domain.OAuthApp) string {
	if app.TokenURL != "" {
		return app.TokenURL
	}
	return google.Endpoint.TokenURL
}
