package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restwell-app/restwell-cli/internal/adapters/driven/credstore/memory"
	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

// fakeEndpoint is a scriptable driven.TokenEndpoint.
type fakeEndpoint struct {
	exchangeFn func(code, redirectURI string) (*driven.TokenGrant, error)
	refreshFn  func(refreshToken string) (*driven.TokenGrant, error)

	exchangeCalls int
	refreshCalls  int
	gotRedirect   string
	gotState      string
}

func (f *fakeEndpoint) AuthCodeURL(_ domain.OAuthApp, state, redirectURI string) string {
	f.gotState = state
	f.gotRedirect = redirectURI
	return "https://auth.example/consent?state=" + state
}

func (f *fakeEndpoint) Exchange(_ context.Context, _ domain.OAuthApp, code, redirectURI string) (*driven.TokenGrant, error) {
	f.exchangeCalls++
	return f.exchangeFn(code, redirectURI)
}

func (f *fakeEndpoint) Refresh(_ context.Context, _ domain.OAuthApp, refreshToken string) (*driven.TokenGrant, error) {
	f.refreshCalls++
	return f.refreshFn(refreshToken)
}

// fakeListener is a scriptable driven.CallbackListener.
type fakeListener struct {
	waitFn   func(ctx context.Context) (string, error)
	startErr error
	started  bool
	stopped  bool
}

func (f *fakeListener) Start() error {
	f.started = true
	return f.startErr
}

func (f *fakeListener) RedirectURI() string { return "http://127.0.0.1:39141/auth/callback" }

func (f *fakeListener) WaitForCode(ctx context.Context) (string, error) {
	return f.waitFn(ctx)
}

func (f *fakeListener) Stop() error {
	f.stopped = true
	return nil
}

func testApp() domain.OAuthApp {
	return domain.OAuthApp{ClientID: "client-id", ClientSecret: "client-secret"}
}

func grantOK() *driven.TokenGrant {
	return &driven.TokenGrant{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Scope:        domain.ScopeCalendarEvents,
		ExpiresIn:    3600,
	}
}

func newTestAuth(endpoint *fakeEndpoint, listener *fakeListener) (*AuthService, *memory.Store) {
	store := memory.NewStore()
	factory := func(string) (driven.CallbackListener, error) { return listener, nil }
	browser := func(string) error { return nil }
	svc := NewAuthService(testApp(), store, endpoint, factory, browser)
	return svc, store
}

// seedAuthenticated puts a valid TokenSet in the store.
func seedAuthenticated(t *testing.T, store *memory.Store, expiresIn int) {
	t.Helper()
	ts := domain.NewTokenSet("access-0", "refresh-0", "Bearer",
		domain.ScopeCalendarEvents, expiresIn, time.Now())
	require.NoError(t, store.Save(ts))
}

func TestInitiateAuth_MissingConfig(t *testing.T) {
	svc, _ := newTestAuth(&fakeEndpoint{}, &fakeListener{})
	svc.app = domain.OAuthApp{}

	err := svc.InitiateAuth(context.Background())

	assert.ErrorIs(t, err, domain.ErrConfigMissing)
}

func TestInitiateAuth_FullFlow(t *testing.T) {
	endpoint := &fakeEndpoint{
		exchangeFn: func(code, redirectURI string) (*driven.TokenGrant, error) {
			assert.Equal(t, "auth-code", code)
			assert.Equal(t, "http://127.0.0.1:39141/auth/callback", redirectURI)
			return grantOK(), nil
		},
	}
	listener := &fakeListener{
		waitFn: func(context.Context) (string, error) { return "auth-code", nil },
	}
	svc, store := newTestAuth(endpoint, listener)

	err := svc.InitiateAuth(context.Background())

	require.NoError(t, err)
	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, domain.PhaseAuthenticated, svc.Phase())
	assert.True(t, listener.started)
	assert.True(t, listener.stopped)
	assert.Equal(t, 1, endpoint.exchangeCalls)

	ts := store.Current()
	require.NotNil(t, ts)
	assert.Equal(t, "access-1", ts.AccessToken)
	assert.Equal(t, "refresh-1", ts.RefreshToken)

	// Nonce is consumed by the flow
	_, ok := store.TakeState()
	assert.False(t, ok)
}

func TestInitiateAuth_ExpiryDerivedFromIssueTime(t *testing.T) {
	endpoint := &fakeEndpoint{
		exchangeFn: func(string, string) (*driven.TokenGrant, error) { return grantOK(), nil },
	}
	listener := &fakeListener{
		waitFn: func(context.Context) (string, error) { return "auth-code", nil },
	}
	svc, store := newTestAuth(endpoint, listener)

	issuedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	require.NoError(t, svc.InitiateAuth(context.Background()))

	ts := store.Current()
	require.NotNil(t, ts)
	assert.Equal(t, issuedAt.UnixMilli()+3600*1000, ts.ExpiresAt)
}

func TestInitiateAuth_BrowserBlocked(t *testing.T) {
	listener := &fakeListener{
		waitFn: func(context.Context) (string, error) { t.Fatal("should not wait"); return "", nil },
	}
	store := memory.NewStore()
	factory := func(string) (driven.CallbackListener, error) { return listener, nil }
	browser := func(string) error { return errors.New("no display") }
	svc := NewAuthService(testApp(), store, &fakeEndpoint{}, factory, browser)

	err := svc.InitiateAuth(context.Background())

	assert.ErrorIs(t, err, domain.ErrBrowserBlocked)
	assert.True(t, listener.stopped)
	assert.False(t, svc.IsAuthenticated())

	// The nonce must not survive an abandoned flow
	_, ok := store.TakeState()
	assert.False(t, ok)
}

func TestInitiateAuth_TimeoutMapsToAuthTimeout(t *testing.T) {
	listener := &fakeListener{
		// Simulates the flow deadline firing while the caller context is
		// still live.
		waitFn: func(context.Context) (string, error) { return "", context.DeadlineExceeded },
	}
	svc, _ := newTestAuth(&fakeEndpoint{}, listener)

	err := svc.InitiateAuth(context.Background())

	assert.ErrorIs(t, err, domain.ErrAuthTimeout)
	assert.True(t, listener.stopped)
	assert.Equal(t, domain.PhaseUnauthenticated, svc.Phase())
}

func TestInitiateAuth_CancellationMapsToAuthCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	listener := &fakeListener{
		waitFn: func(ctx context.Context) (string, error) {
			cancel()
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	svc, _ := newTestAuth(&fakeEndpoint{}, listener)

	err := svc.InitiateAuth(ctx)

	assert.ErrorIs(t, err, domain.ErrAuthCancelled)
	assert.True(t, listener.stopped)
}

func TestHandleCallback_StateMismatch(t *testing.T) {
	svc, store := newTestAuth(&fakeEndpoint{
		exchangeFn: func(string, string) (*driven.TokenGrant, error) {
			t.Fatal("exchange must not run on state mismatch")
			return nil, nil
		},
	}, &fakeListener{})

	require.NoError(t, store.SaveState("expected-nonce"))

	err := svc.HandleCallback(context.Background(), "auth-code", "forged-nonce")

	assert.ErrorIs(t, err, domain.ErrStateMismatch)
	assert.False(t, svc.IsAuthenticated())
}

func TestHandleCallback_NonceIsSingleUse(t *testing.T) {
	endpoint := &fakeEndpoint{
		exchangeFn: func(string, string) (*driven.TokenGrant, error) { return grantOK(), nil },
	}
	svc, store := newTestAuth(endpoint, &fakeListener{})

	require.NoError(t, store.SaveState("nonce-1"))
	require.NoError(t, svc.HandleCallback(context.Background(), "auth-code", "nonce-1"))

	// A replayed callback with the same state finds no stored nonce
	err := svc.HandleCallback(context.Background(), "auth-code", "nonce-1")
	assert.ErrorIs(t, err, domain.ErrStateMismatch)
	assert.Equal(t, 1, endpoint.exchangeCalls)
}

func TestHandleCallback_MalformedGrant(t *testing.T) {
	tests := []struct {
		name  string
		grant *driven.TokenGrant
	}{
		{"missing access token", &driven.TokenGrant{RefreshToken: "refresh-1", ExpiresIn: 3600}},
		{"missing refresh token", &driven.TokenGrant{AccessToken: "access-1", ExpiresIn: 3600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := &fakeEndpoint{
				exchangeFn: func(string, string) (*driven.TokenGrant, error) { return tt.grant, nil },
			}
			svc, store := newTestAuth(endpoint, &fakeListener{})
			require.NoError(t, store.SaveState("nonce-1"))

			err := svc.HandleCallback(context.Background(), "auth-code", "nonce-1")

			assert.ErrorIs(t, err, domain.ErrMalformedTokenResponse)
			assert.False(t, svc.IsAuthenticated())
		})
	}
}

func TestHandleCallback_SaveFailureLeavesSignedOut(t *testing.T) {
	endpoint := &fakeEndpoint{
		exchangeFn: func(string, string) (*driven.TokenGrant, error) { return grantOK(), nil },
	}
	svc, store := newTestAuth(endpoint, &fakeListener{})
	store.SaveErr = errors.New("disk full")
	require.NoError(t, store.SaveState("nonce-1"))

	err := svc.HandleCallback(context.Background(), "auth-code", "nonce-1")

	require.Error(t, err)
	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, store.Persisted())
	assert.Equal(t, domain.PhaseUnauthenticated, svc.Phase())
}

func TestRefresh_NotAuthenticated(t *testing.T) {
	svc, _ := newTestAuth(&fakeEndpoint{}, &fakeListener{})

	err := svc.RefreshAccessToken(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestRefresh_RotatesAccessTokenKeepingRefreshToken(t *testing.T) {
	endpoint := &fakeEndpoint{
		refreshFn: func(refreshToken string) (*driven.TokenGrant, error) {
			assert.Equal(t, "refresh-0", refreshToken)
			return &driven.TokenGrant{AccessToken: "access-new", ExpiresIn: 3600}, nil
		},
	}
	svc, store := newTestAuth(endpoint, &fakeListener{})
	seedAuthenticated(t, store, 3600)

	require.NoError(t, svc.RefreshAccessToken(context.Background()))

	ts := store.Current()
	require.NotNil(t, ts)
	assert.Equal(t, "access-new", ts.AccessToken)
	assert.Equal(t, "refresh-0", ts.RefreshToken)
	assert.Equal(t, domain.PhaseAuthenticated, svc.Phase())
}

func TestRefresh_RejectedRefreshTokenForcesSignOut(t *testing.T) {
	endpoint := &fakeEndpoint{
		refreshFn: func(string) (*driven.TokenGrant, error) {
			return nil, fmt.Errorf("%w: token endpoint returned 400", domain.ErrReauthRequired)
		},
	}
	svc, store := newTestAuth(endpoint, &fakeListener{})
	seedAuthenticated(t, store, 3600)

	err := svc.RefreshAccessToken(context.Background())

	assert.ErrorIs(t, err, domain.ErrReauthRequired)
	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, store.Current())
	assert.Equal(t, domain.PhaseUnauthenticated, svc.Phase())
}

func TestRefresh_TransientFailureKeepsCredentials(t *testing.T) {
	endpoint := &fakeEndpoint{
		refreshFn: func(string) (*driven.TokenGrant, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc, store := newTestAuth(endpoint, &fakeListener{})
	seedAuthenticated(t, store, 3600)

	err := svc.RefreshAccessToken(context.Background())

	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
	assert.True(t, svc.IsAuthenticated())
	require.NotNil(t, store.Current())
	assert.Equal(t, "access-0", store.Current().AccessToken)
}

func TestRequest_NotAuthenticated(t *testing.T) {
	svc, _ := newTestAuth(&fakeEndpoint{}, &fakeListener{})

	_, err := svc.Request(context.Background(), http.MethodGet, "http://example.invalid/", nil)

	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestRequest_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc, store := newTestAuth(&fakeEndpoint{}, &fakeListener{})
	seedAuthenticated(t, store, 3600)

	resp, err := svc.Request(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer access-0", gotAuth)
}

func TestRequest_RefreshesInsideExpiryBuffer(t *testing.T) {
	endpoint := &fakeEndpoint{
		refreshFn: func(string) (*driven.TokenGrant, error) {
			return &driven.TokenGrant{AccessToken: "access-new", ExpiresIn: 3600}, nil
		},
	}
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc, store := newTestAuth(endpoint, &fakeListener{})
	// 30 seconds left: inside the 60-second buffer, still technically valid
	seedAuthenticated(t, store, 30)

	resp, err := svc.Request(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 1, endpoint.refreshCalls)
	assert.Equal(t, "Bearer access-new", gotAuth)
}

func TestRequest_RetriesOnceAfter401(t *testing.T) {
	endpoint := &fakeEndpoint{
		refreshFn: func(string) (*driven.TokenGrant, error) {
			return &driven.TokenGrant{AccessToken: "access-new", ExpiresIn: 3600}, nil
		},
	}
	var hits int
	var lastAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		lastAuth = r.Header.Get("Authorization")
		if hits == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc, store := newTestAuth(endpoint, &fakeListener{})
	seedAuthenticated(t, store, 3600)

	resp, err := svc.Request(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, endpoint.refreshCalls)
	assert.Equal(t, "Bearer access-new", lastAuth)
}

func TestRequest_SecondUnauthorizedIsSurfaced(t *testing.T) {
	endpoint := &fakeEndpoint{
		refreshFn: func(string) (*driven.TokenGrant, error) {
			return &driven.TokenGrant{AccessToken: "access-new", ExpiresIn: 3600}, nil
		},
	}
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc, store := newTestAuth(endpoint, &fakeListener{})
	seedAuthenticated(t, store, 3600)

	resp, err := svc.Request(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	// No retry loop: exactly one refresh, two attempts, 401 returned as-is
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, endpoint.refreshCalls)
}

func TestRequest_DeadRefreshTokenDuringRetry(t *testing.T) {
	endpoint := &fakeEndpoint{
		refreshFn: func(string) (*driven.TokenGrant, error) {
			return nil, fmt.Errorf("%w: token endpoint returned 401", domain.ErrReauthRequired)
		},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc, store := newTestAuth(endpoint, &fakeListener{})
	seedAuthenticated(t, store, 3600)

	_, err := svc.Request(context.Background(), http.MethodGet, server.URL, nil)

	assert.ErrorIs(t, err, domain.ErrReauthRequired)
	assert.False(t, svc.IsAuthenticated())
}

func TestGetToken(t *testing.T) {
	svc, store := newTestAuth(&fakeEndpoint{}, &fakeListener{})
	seedAuthenticated(t, store, 3600)

	token, err := svc.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "access-0", token)
}

func TestSignOut(t *testing.T) {
	svc, store := newTestAuth(&fakeEndpoint{}, &fakeListener{})
	seedAuthenticated(t, store, 3600)
	require.True(t, svc.IsAuthenticated())

	require.NoError(t, svc.SignOut())

	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, store.Current())
	assert.Equal(t, domain.PhaseUnauthenticated, svc.Phase())
}
