package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driving"
	"github.com/restwell-app/restwell-cli/internal/logger"
)

// Ensure AuthService implements the interfaces.
var (
	_ driving.AuthService    = (*AuthService)(nil)
	_ driven.BearerRequester = (*AuthService)(nil)
	_ driven.TokenProvider   = (*AuthService)(nil)
)

const (
	// refreshBuffer is the safety margin before expiry at which a token is
	// refreshed early. A correctness margin against clock skew and request
	// latency; fixed, not configurable per call.
	refreshBuffer = 60 * time.Second

	// authFlowTimeout bounds the wait for the provider callback. Fixed;
	// callers needing different timeouts must wrap the service.
	authFlowTimeout = 5 * time.Minute
)

// AuthService is the OAuth session controller. It drives the
// authorization-code flow end to end, keeps the TokenSet valid, and wraps
// every authenticated request. Explicitly constructed and injected; there is
// no package-level instance.
type AuthService struct {
	app         domain.OAuthApp
	store       driven.TokenStore
	endpoint    driven.TokenEndpoint
	listeners   driven.ListenerFactory
	openBrowser driven.BrowserOpener

	httpClient *http.Client
	now        func() time.Time

	mu              sync.Mutex
	phase           domain.AuthPhase
	pendingRedirect string
}

// NewAuthService creates the session controller. The listener factory and
// browser opener are injectable so the flow can be driven in tests.
func NewAuthService(
	app domain.OAuthApp,
	store driven.TokenStore,
	endpoint driven.TokenEndpoint,
	listeners driven.ListenerFactory,
	openBrowser driven.BrowserOpener,
) *AuthService {
	s := &AuthService{
		app:         app,
		store:       store,
		endpoint:    endpoint,
		listeners:   listeners,
		openBrowser: openBrowser,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		now:         time.Now,
	}
	if store.IsAuthenticated(s.now()) {
		s.phase = domain.PhaseAuthenticated
	}
	return s
}

// InitiateAuth runs the full browser consent flow.
func (s *AuthService) InitiateAuth(ctx context.Context) error {
	// Configuration errors surface synchronously, before any round trip.
	if !s.app.Configured() {
		return domain.ErrConfigMissing
	}

	state, err := generateState()
	if err != nil {
		return fmt.Errorf("generate state: %w", err)
	}
	if err := s.store.SaveState(state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	listener, err := s.listeners(state)
	if err != nil {
		s.store.TakeState()
		return fmt.Errorf("create callback listener: %w", err)
	}
	if err := listener.Start(); err != nil {
		s.store.TakeState()
		return fmt.Errorf("start callback listener: %w", err)
	}

	redirectURI := listener.RedirectURI()
	s.setPending(redirectURI)
	authURL := s.endpoint.AuthCodeURL(s.app, state, redirectURI)

	s.setPhase(domain.PhaseAwaitingBrowser)
	logger.Debug("auth: opening browser, redirect_uri=%s", redirectURI)

	if err := s.openBrowser(authURL); err != nil {
		s.abandonFlow(listener)
		return fmt.Errorf("%w: %v", domain.ErrBrowserBlocked, err)
	}

	// Three mutually exclusive outcomes race: the provider callback, caller
	// cancellation, and the fixed timeout. The listener guarantees exactly
	// one resolution; Stop runs on every path.
	flowCtx, cancel := context.WithTimeout(ctx, authFlowTimeout)
	defer cancel()

	code, err := listener.WaitForCode(flowCtx)
	if stopErr := listener.Stop(); stopErr != nil {
		logger.Warn("auth: callback listener stop: %v", stopErr)
	}
	if err != nil {
		s.clearPending()
		s.store.TakeState()
		s.setPhase(s.restingPhase())
		switch {
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			return domain.ErrAuthTimeout
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return domain.ErrAuthCancelled
		default:
			return fmt.Errorf("authorization failed: %w", err)
		}
	}

	return s.HandleCallback(ctx, code, state)
}

// HandleCallback verifies the echoed state and exchanges the code for
// tokens. The stored nonce is consumed on first verification, match or not.
func (s *AuthService) HandleCallback(ctx context.Context, code, state string) error {
	if !s.app.Configured() {
		return domain.ErrConfigMissing
	}

	nonce, ok := s.store.TakeState()
	redirectURI := s.takePending()
	if !ok || state == "" || nonce != state {
		s.setPhase(s.restingPhase())
		return domain.ErrStateMismatch
	}
	if code == "" {
		s.setPhase(s.restingPhase())
		return fmt.Errorf("%w: empty authorization code", domain.ErrInvalidInput)
	}

	s.setPhase(domain.PhaseExchangingCode)

	grant, err := s.endpoint.Exchange(ctx, s.app, code, redirectURI)
	if err != nil {
		s.setPhase(s.restingPhase())
		return fmt.Errorf("exchange code: %w", err)
	}

	// A grant lacking either token is a protocol violation, not retryable.
	if grant.AccessToken == "" || grant.RefreshToken == "" {
		s.setPhase(s.restingPhase())
		return domain.ErrMalformedTokenResponse
	}

	ts := domain.NewTokenSet(
		grant.AccessToken,
		grant.RefreshToken,
		orDefault(grant.TokenType, "Bearer"),
		orDefault(grant.Scope, joinScopes(s.app.Scopes())),
		grant.ExpiresIn,
		s.now(),
	)
	if err := s.store.Save(ts); err != nil {
		s.setPhase(domain.PhaseUnauthenticated)
		return fmt.Errorf("persist tokens: %w", err)
	}

	s.setPhase(domain.PhaseAuthenticated)
	logger.Info("auth: signed in, token expires at %s", time.UnixMilli(ts.ExpiresAt).Format(time.RFC3339))
	return nil
}

// ensureValidToken is the gate before every authenticated request: fail
// immediately without a TokenSet, refresh early inside the buffer window.
func (s *AuthService) ensureValidToken(ctx context.Context) error {
	ts := s.store.Current()
	if ts == nil {
		return domain.ErrNotAuthenticated
	}
	if ts.ExpiresWithin(s.now(), refreshBuffer) {
		return s.RefreshAccessToken(ctx)
	}
	return nil
}

// RefreshAccessToken mints a new access token with the refresh_token grant.
// A 400/401 response means the refresh token is dead: all credentials are
// cleared and the caller must re-authenticate. Transient failures leave the
// stored credentials intact.
func (s *AuthService) RefreshAccessToken(ctx context.Context) error {
	ts := s.store.Current()
	if ts == nil || ts.RefreshToken == "" {
		return domain.ErrNotAuthenticated
	}

	s.setPhase(domain.PhaseRefreshing)

	grant, err := s.endpoint.Refresh(ctx, s.app, ts.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrReauthRequired) {
			logger.Warn("auth: refresh token rejected, signing out")
			if clearErr := s.store.Clear(); clearErr != nil {
				logger.Warn("auth: clearing credentials: %v", clearErr)
			}
			s.setPhase(domain.PhaseUnauthenticated)
			return domain.ErrReauthRequired
		}
		s.setPhase(domain.PhaseAuthenticated)
		return fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, err)
	}

	if grant.AccessToken == "" {
		s.setPhase(domain.PhaseAuthenticated)
		return domain.ErrMalformedTokenResponse
	}

	// Whole-object replacement through the store; the refresh token is
	// retained unchanged.
	ts.Rotate(grant.AccessToken, grant.ExpiresIn, s.now())
	if err := s.store.Save(ts); err != nil {
		s.setPhase(domain.PhaseUnauthenticated)
		return fmt.Errorf("persist refreshed tokens: %w", err)
	}

	s.setPhase(domain.PhaseAuthenticated)
	return nil
}

// Request performs an authenticated HTTP call. On a 401 despite a
// pre-flight-valid token it refreshes once and retries once; a second 401 is
// surfaced to the caller as-is.
func (s *AuthService) Request(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	if err := s.ensureValidToken(ctx); err != nil {
		return nil, err
	}

	resp, err := s.do(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Server-side revocation race: one refresh, one retry, no loop.
	resp.Body.Close()
	logger.Debug("auth: 401 on %s %s, refreshing once", method, url)
	if err := s.RefreshAccessToken(ctx); err != nil {
		return nil, err
	}
	return s.do(ctx, method, url, body)
}

// do issues a single bearer request. Each attempt builds a fresh request so
// the body replays on retry.
func (s *AuthService) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	ts := s.store.Current()
	if ts == nil {
		return nil, domain.ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+ts.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return s.httpClient.Do(req)
}

// GetToken implements driven.TokenProvider for infrastructure glue.
func (s *AuthService) GetToken(ctx context.Context) (string, error) {
	if err := s.ensureValidToken(ctx); err != nil {
		return "", err
	}
	ts := s.store.Current()
	if ts == nil {
		return "", domain.ErrNotAuthenticated
	}
	return ts.AccessToken, nil
}

// IsAuthenticated is a point-in-time capability check with no side effects.
func (s *AuthService) IsAuthenticated() bool {
	return s.store.IsAuthenticated(s.now())
}

// Phase returns the current state of the authorization flow.
func (s *AuthService) Phase() domain.AuthPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// SignOut clears all credential state.
func (s *AuthService) SignOut() error {
	s.setPhase(domain.PhaseUnauthenticated)
	return s.store.Clear()
}

func (s *AuthService) setPhase(p domain.AuthPhase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// restingPhase is where a failed flow lands: still authenticated if a valid
// TokenSet survives, unauthenticated otherwise.
func (s *AuthService) restingPhase() domain.AuthPhase {
	if s.store.IsAuthenticated(s.now()) {
		return domain.PhaseAuthenticated
	}
	return domain.PhaseUnauthenticated
}

func (s *AuthService) abandonFlow(listener driven.CallbackListener) {
	if err := listener.Stop(); err != nil {
		logger.Warn("auth: callback listener stop: %v", err)
	}
	s.store.TakeState()
	s.clearPending()
	s.setPhase(s.restingPhase())
}

func (s *AuthService) setPending(redirectURI string) {
	s.mu.Lock()
	s.pendingRedirect = redirectURI
	s.mu.Unlock()
}

func (s *AuthService) takePending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	uri := s.pendingRedirect
	s.pendingRedirect = ""
	return uri
}

func (s *AuthService) clearPending() {
	s.setPending("")
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func joinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}
