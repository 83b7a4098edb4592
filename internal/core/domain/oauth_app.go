package domain

// Google Calendar scopes requested during authorization. The set is the
// minimum needed to read calendars and manage events; broader scopes are
// never requested.
const (
	ScopeCalendarReadonly = "https://www.googleapis.com/auth/calendar.readonly"
	ScopeCalendarEvents   = "https://www.googleapis.com/auth/calendar.events"
)

// CallbackPath is the fixed redirect path served by the local callback
// server. The full redirect URI is derived from the server's listen address
// plus this path, never hardcoded.
const CallbackPath = "/auth/callback"

// OAuthApp stores the OAuth application credentials from the Google Cloud
// console, plus optional endpoint overrides used by tests.
type OAuthApp struct {
	// ClientID is the OAuth client ID from the developer console.
	ClientID string `json:"client_id"`
	// ClientSecret is the OAuth client secret from the developer console.
	ClientSecret string `json:"client_secret"`
	// AuthURL overrides the authorization endpoint. Empty means Google's.
	AuthURL string `json:"auth_url,omitempty"`
	// TokenURL overrides the token endpoint. Empty means Google's.
	TokenURL string `json:"token_url,omitempty"`
}

// Configured returns true if both client credentials are present. A missing
// credential is a configuration error surfaced before any network I/O.
func (a OAuthApp) Configured() bool {
	return a.ClientID != "" && a.ClientSecret != ""
}

// Scopes returns the scope set requested during authorization.
func (a OAuthApp) Scopes() []string {
	return []string{ScopeCalendarReadonly, ScopeCalendarEvents}
}
