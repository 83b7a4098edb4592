// Package oauth provides the local OAuth callback server and browser
// utilities. The server is the redirect surface for the authorization flow:
// it receives the provider redirect on a loopback port, validates the state
// parameter, and either relays the code to the waiting session controller
// or completes the exchange itself.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

// Ensure CallbackServer implements the interface.
var _ driven.CallbackListener = (*CallbackServer)(nil)

// CompleteFunc finishes the token exchange for a callback received outside
// a waiting flow (the direct invocation context).
type CompleteFunc func(ctx context.Context, code, state string) error

// CallbackServer handles the OAuth redirect on a local loopback port.
//
// In relay mode (no completer) the code is handed to WaitForCode. In direct
// mode the completer runs inside the handler and the result page reports
// the outcome. Either way at most one callback resolves: an explicit guard
// prevents a second redirect, a late poll, or a racing close from
// double-resolving the flow.
type CallbackServer struct {
	mu            sync.Mutex
	port          int
	expectedState string
	resolved      bool
	codeChan      chan string
	errChan       chan error
	server        *http.Server
	listener      net.Listener
	completer     CompleteFunc
}

// NewCallbackServer creates a relay-mode callback server. If port is 0 an
// ephemeral port is chosen at Start.
func NewCallbackServer(port int, expectedState string) *CallbackServer {
	return &CallbackServer{
		port:          port,
		expectedState: expectedState,
		codeChan:      make(chan string, 1),
		errChan:       make(chan error, 1),
	}
}

// NewDirectCallbackServer creates a direct-mode server that completes the
// exchange itself when the redirect arrives.
func NewDirectCallbackServer(port int, expectedState string, complete CompleteFunc) *CallbackServer {
	s := NewCallbackServer(port, expectedState)
	s.completer = complete
	return s
}

// Start starts the callback server.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(domain.CallbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// Record the actual port (matters when port was 0)
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.resolveErr(err)
		}
	}()

	return nil
}

// handleCallback processes the provider redirect.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Explicit provider error
	if errParam := query.Get("error"); errParam != "" {
		errDesc := query.Get("error_description")
		s.resolveErr(fmt.Errorf("oauth error: %s - %s", errParam, errDesc))
		writePage(w, "Authorization failed", html.EscapeString(errDesc))
		return
	}

	// State must match the nonce this server was primed with. A mismatch is
	// a potential forged callback, never forwarded.
	state := query.Get("state")
	if state != s.expectedState {
		s.resolveErr(domain.ErrStateMismatch)
		writePage(w, "Authorization failed", "Invalid state parameter.")
		return
	}

	code := query.Get("code")
	if code == "" {
		s.resolveErr(errors.New("no authorization code received"))
		writePage(w, "Authorization failed", "No authorization code received.")
		return
	}

	if s.completer != nil {
		if !s.markResolved() {
			writePage(w, "Already handled", "This authorization was already processed.")
			return
		}
		if err := s.completer(r.Context(), code, state); err != nil {
			writePage(w, "Authorization failed", html.EscapeString(err.Error()))
			return
		}
		writePage(w, "You're signed in!", "You can close this window and return to Restwell.")
		return
	}

	if !s.resolveCode(code) {
		writePage(w, "Already handled", "This authorization was already processed.")
		return
	}
	writePage(w, "Authorization successful!", "You can close this window and return to Restwell.")
}

// WaitForCode blocks until the code arrives, an error path fires, or the
// context ends. Exactly one outcome is delivered per server.
func (s *CallbackServer) WaitForCode(ctx context.Context) (string, error) {
	select {
	case code := <-s.codeChan:
		return code, nil
	case err := <-s.errChan:
		return "", err
	case <-ctx.Done():
		// The context outcome wins: mark resolved so a redirect landing a
		// tick later cannot deliver a second resolution.
		s.markResolved()
		return "", ctx.Err()
	}
}

// Stop shuts down the callback server. Safe to call repeatedly and
// regardless of which resolution path fired.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	server := s.server
	s.resolved = true
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURI returns the redirect URI for this server, derived from the
// actual listen address plus the fixed callback path.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", s.Port(), domain.CallbackPath)
}

// markResolved flips the resolution guard. Returns false if the flow was
// already resolved.
func (s *CallbackServer) markResolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return false
	}
	s.resolved = true
	return true
}

func (s *CallbackServer) resolveCode(code string) bool {
	if !s.markResolved() {
		return false
	}
	s.codeChan <- code
	return true
}

func (s *CallbackServer) resolveErr(err error) bool {
	if !s.markResolved() {
		return false
	}
	s.errChan <- err
	return true
}

// Port range scanned for the callback server. A fixed range keeps the
// redirect URI predictable for local firewall rules.
const (
	callbackPortStart = 39100
	callbackPortEnd   = 39199
)

// DefaultFactory builds relay-mode callback servers on a port scanned from
// the fixed local range. It satisfies driven.ListenerFactory.
func DefaultFactory(expectedState string) (driven.CallbackListener, error) {
	port, err := FindAvailablePort(callbackPortStart, callbackPortEnd)
	if err != nil {
		return nil, err
	}
	return NewCallbackServer(port, expectedState), nil
}

func writePage(w http.ResponseWriter, title, message string) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, resultHTML(title, message))
}

//nolint:misspell // CSS properties use American spelling (center, color)
func resultHTML(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>Restwell - Sign in</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #F3F7F4;
        }
        .container {
            text-align: center;
            background: white;
            padding: 48px 64px;
            border-radius: 16px;
            border: 1px solid #D4DED6;
            box-shadow: 0 4px 24px rgba(0,0,0,0.08);
        }
        h1 { color: #2E4639; margin: 0 0 8px 0; font-size: 24px; }
        p { color: #6E7D72; margin: 0; font-size: 16px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, title, message)
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// FindAvailablePort finds an available port in the given range.
func FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}
