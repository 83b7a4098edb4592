package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/restwell-app/restwell-cli/internal/logger"
)

// configWatcher is the optional hot-reload surface of a config store.
type configWatcher interface {
	Watch() error
	StopWatch()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background scheduler",
	Long: `Run the background scheduler in the foreground.

The scheduler keeps the access token fresh and periodically surfaces the
next suggested self-care slot. It runs until interrupted; credentials are
discarded when the process exits.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}
	if authService == nil {
		return errors.New("auth service not configured")
	}

	// The scheduler is useless without a session; sign in up front.
	if !authService.IsAuthenticated() {
		cmd.Println("Opening your browser to sign in to Google...")
		if err := authService.InitiateAuth(cmd.Context()); err != nil {
			return err
		}
	}

	// Pick up config edits (scheduler toggles, default calendar) while the
	// scheduler runs.
	if watcher, ok := configStore.(configWatcher); ok {
		if err := watcher.Watch(); err != nil {
			logger.Warn("config hot-reload unavailable: %v", err)
		} else {
			defer watcher.StopWatch()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Println("Scheduler running. Press Ctrl-C to stop.")
	return scheduler.Start(ctx)
}
