// Command restwell is the Restwell CLI entry point. It wires the adapters to
// the core services and hands control to the command tree.
package main

import (
	"fmt"
	"os"

	fileconfig "github.com/restwell-app/restwell-cli/internal/adapters/driven/config/file"
	"github.com/restwell-app/restwell-cli/internal/adapters/driven/credstore/session"
	drivenoauth "github.com/restwell-app/restwell-cli/internal/adapters/driven/oauth"
	"github.com/restwell-app/restwell-cli/internal/adapters/driven/storage/sqlite"
	"github.com/restwell-app/restwell-cli/internal/adapters/driving/cli"
	drivingoauth "github.com/restwell-app/restwell-cli/internal/adapters/driving/oauth"
	gcal "github.com/restwell-app/restwell-cli/internal/connectors/google/calendar"
	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/services"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := fileconfig.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	// Tokens live in a session-scoped directory torn down on exit.
	tokenStore, err := session.NewStore("")
	if err != nil {
		return fmt.Errorf("opening session credential store: %w", err)
	}
	defer tokenStore.Close()
	if err := tokenStore.Load(); err != nil {
		return fmt.Errorf("loading session credentials: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	app := domain.OAuthApp{
		ClientID:     configStore.GetString("google.client_id"),
		ClientSecret: configStore.GetString("google.client_secret"),
	}

	authService := services.NewAuthService(
		app,
		tokenStore,
		drivenoauth.NewEndpoint(),
		drivingoauth.DefaultFactory,
		drivingoauth.OpenBrowser,
	)

	calendarClient := gcal.NewClient(authService, "")
	calendarService := services.NewCalendarService(
		calendarClient, configStore.GetString("calendar.default"))
	suggestionService := services.NewSuggestionService(
		calendarService, store.ActivityStore())

	schedulerConfig := domain.DefaultSchedulerConfig()
	if _, ok := configStore.Get("scheduler.enabled"); ok {
		schedulerConfig.Enabled = configStore.GetBool("scheduler.enabled")
	}
	scheduler := services.NewScheduler(
		schedulerConfig, store.SchedulerStore(), authService, suggestionService)

	cli.SetServices(cli.Services{
		Auth:        authService,
		Calendar:    calendarService,
		Suggestions: suggestionService,
		Config:      configStore,
		Scheduler:   scheduler,
		Version:     version,
	})

	return cli.Execute()
}
