package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/restwell-app/restwell-cli/internal/connectors/google"
	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google sign-in",
	Long: `Configure OAuth credentials and sign in to Google Calendar.

Restwell needs a Google OAuth client (client ID and secret) with the
Calendar API enabled. Create one in the Google Cloud console, then run
'restwell auth configure' once and 'restwell auth login' per session.

Tokens are held in memory and in a session-scoped temp directory only;
signing out or exiting the process discards them.

Examples:
  # Store the OAuth client credentials
  restwell auth configure

  # Non-interactive
  restwell auth configure --client-id "xxx" --client-secret "yyy"

  # Sign in (opens your browser)
  restwell auth login

  # Check who is signed in
  restwell auth status

  # Discard credentials
  restwell auth logout`,
}

var authConfigureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Store the Google OAuth client credentials",
	Long: `Store the OAuth client ID and secret used for Google sign-in.

The client secret is read without echo when entered interactively. Both
values are written to the config file with owner-only permissions; access
and refresh tokens are never stored there.`,
	RunE: runAuthConfigure,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Google via the browser",
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current sign-in state",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard all credentials",
	RunE:  runAuthLogout,
}

// Flags for auth configure.
var (
	authClientID     string
	authClientSecret string
)

func init() {
	authConfigureCmd.Flags().StringVar(
		&authClientID, "client-id", "", "OAuth client ID (for non-interactive mode)")
	authConfigureCmd.Flags().StringVar(
		&authClientSecret, "client-secret", "", "OAuth client secret (for non-interactive mode)")

	authCmd.AddCommand(authConfigureCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

//nolint:errcheck // CLI interactive flow
func runAuthConfigure(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	clientID := authClientID
	clientSecret := authClientSecret

	if clientID == "" {
		reader := bufio.NewReader(os.Stdin)
		cmd.Print("Client ID: ")
		input, _ := reader.ReadString('\n')
		clientID = strings.TrimSpace(input)
	}
	if clientID == "" {
		return errors.New("client ID is required")
	}

	if clientSecret == "" {
		cmd.Print("Client Secret: ")
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		cmd.Println()
		if err != nil {
			return fmt.Errorf("reading client secret: %w", err)
		}
		clientSecret = strings.TrimSpace(string(secret))
	}
	if clientSecret == "" {
		return errors.New("client secret is required")
	}

	if err := configStore.Set("google.client_id", clientID); err != nil {
		return fmt.Errorf("saving client ID: %w", err)
	}
	if err := configStore.Set("google.client_secret", clientSecret); err != nil {
		return fmt.Errorf("saving client secret: %w", err)
	}

	cmd.Println("OAuth client credentials saved.")
	cmd.Println("Sign in with: restwell auth login")
	return nil
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	if authService.IsAuthenticated() {
		cmd.Println("Already signed in.")
		return nil
	}

	cmd.Println("Opening your browser to sign in to Google...")
	if err := authService.InitiateAuth(cmd.Context()); err != nil {
		switch {
		case errors.Is(err, domain.ErrConfigMissing):
			return errors.New("OAuth client not configured; run: restwell auth configure")
		case errors.Is(err, domain.ErrBrowserBlocked):
			return errors.New("could not open the browser; check your desktop environment and retry")
		case errors.Is(err, domain.ErrAuthTimeout):
			return errors.New("sign-in timed out waiting for the browser; run login again")
		case errors.Is(err, domain.ErrAuthCancelled):
			return errors.New("sign-in cancelled")
		default:
			return fmt.Errorf("sign-in failed: %w", err)
		}
	}

	cmd.Println("Signed in. This session is authenticated until the process exits.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	if !authService.IsAuthenticated() {
		cmd.Println("Not signed in.")
		cmd.Println("Sign in with: restwell auth login")
		return nil
	}

	cmd.Printf("Signed in (phase: %s)\n", authService.Phase())

	// Profile lookup is best-effort; the session is valid either way.
	if provider, ok := authService.(driven.TokenProvider); ok {
		info, err := google.GetUserInfo(context.Background(), provider)
		if err == nil {
			cmd.Printf("Account: %s", info.Email)
			if info.Name != "" {
				cmd.Printf(" (%s)", info.Name)
			}
			cmd.Println()
		}
	}

	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	if err := authService.SignOut(); err != nil {
		return fmt.Errorf("sign-out failed: %w", err)
	}

	cmd.Println("Signed out. All session credentials discarded.")
	return nil
}
