// Package cli implements the restwell command line interface using cobra.
// Commands hold no business logic; they parse flags, call driving ports,
// and format output.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driving"
	"github.com/restwell-app/restwell-cli/internal/core/services"
	"github.com/restwell-app/restwell-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	authService       driving.AuthService
	calendarService   driving.CalendarService
	suggestionService driving.SuggestionService
	configStore       driven.ConfigStore
	scheduler         *services.Scheduler
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "restwell",
	Short: "Schedule self-care around your calendar",
	Long: `Restwell suggests and schedules wellness activities around your
Google Calendar: walks, breaks, stretches, and quiet time that fit the gaps
in your day.

Sign in with 'restwell auth login' to connect your Google account. Tokens
live only for the lifetime of the process and are never written to disk
beyond the current session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// Services bundles everything the commands need.
type Services struct {
	Auth        driving.AuthService
	Calendar    driving.CalendarService
	Suggestions driving.SuggestionService
	Config      driven.ConfigStore
	Scheduler   *services.Scheduler
	Version     string
}

// SetServices injects the service implementations. Called once from the
// composition root before Execute.
func SetServices(s Services) {
	authService = s.Auth
	calendarService = s.Calendar
	suggestionService = s.Suggestions
	configStore = s.Config
	scheduler = s.Scheduler
	if s.Version != "" {
		version = s.Version
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
