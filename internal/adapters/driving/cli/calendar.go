package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "List your Google calendars",
	RunE:  runCalendarsList,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "View and manage calendar events",
	Long: `List, add, and remove events on a calendar.

Examples:
  # Today's events on the primary calendar
  restwell events list

  # The next week on a specific calendar
  restwell events list --calendar work@example.com --days 7

  # Block out a walk
  restwell events add --title "Lunchtime walk" --start 2026-09-02T12:30 --duration 30m

  # Remove an event
  restwell events rm <event-id>`,
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List upcoming events",
	RunE:  runEventsList,
}

var eventsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an event",
	RunE:  runEventsAdd,
}

var eventsRmCmd = &cobra.Command{
	Use:   "rm [event-id]",
	Short: "Remove an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsRm,
}

// Flags for events commands.
var (
	eventsCalendarID string
	eventsDays       int
	eventsTitle      string
	eventsStart      string
	eventsDuration   time.Duration
	eventsDesc       string
	eventsLocation   string
)

func init() {
	eventsCmd.PersistentFlags().StringVar(
		&eventsCalendarID, "calendar", "", "Calendar ID (defaults to the primary calendar)")

	eventsListCmd.Flags().IntVar(
		&eventsDays, "days", 1, "Number of days to list, starting today")

	eventsAddCmd.Flags().StringVar(
		&eventsTitle, "title", "", "Event title")
	eventsAddCmd.Flags().StringVar(
		&eventsStart, "start", "", "Start time (2006-01-02T15:04, local time)")
	eventsAddCmd.Flags().DurationVar(
		&eventsDuration, "duration", 30*time.Minute, "Event duration")
	eventsAddCmd.Flags().StringVar(
		&eventsDesc, "desc", "", "Event description")
	eventsAddCmd.Flags().StringVar(
		&eventsLocation, "location", "", "Event location")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsRmCmd)
	rootCmd.AddCommand(calendarsCmd)
	rootCmd.AddCommand(eventsCmd)
}

func runCalendarsList(cmd *cobra.Command, _ []string) error {
	if calendarService == nil {
		return errors.New("calendar service not configured")
	}

	calendars, err := calendarService.ListCalendars(cmd.Context())
	if err != nil {
		return describeCalendarError(err)
	}

	if len(calendars) == 0 {
		cmd.Println("No calendars found.")
		return nil
	}

	for _, cal := range calendars {
		marker := " "
		if cal.Primary {
			marker = "*"
		}
		cmd.Printf("%s %-40s %s\n", marker, cal.ID, cal.Summary)
	}
	return nil
}

func runEventsList(cmd *cobra.Command, _ []string) error {
	if calendarService == nil {
		return errors.New("calendar service not configured")
	}
	if eventsDays < 1 {
		return errors.New("--days must be at least 1")
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, eventsDays)

	events, err := calendarService.ListEvents(cmd.Context(), eventsCalendarID, from, to)
	if err != nil {
		return describeCalendarError(err)
	}

	if len(events) == 0 {
		cmd.Println("No events in the selected range.")
		return nil
	}

	for _, event := range events {
		when := event.Start.Local().Format("Mon 02 Jan 15:04")
		if event.AllDay {
			when = event.Start.Format("Mon 02 Jan") + " (all day)"
		}
		cmd.Printf("%-24s %-40s %s\n", when, event.Title, event.ID)
	}
	return nil
}

func runEventsAdd(cmd *cobra.Command, _ []string) error {
	if calendarService == nil {
		return errors.New("calendar service not configured")
	}
	if eventsTitle == "" {
		return errors.New("--title is required")
	}
	if eventsStart == "" {
		return errors.New("--start is required")
	}

	start, err := parseLocalTime(eventsStart)
	if err != nil {
		return err
	}

	event, err := calendarService.CreateEvent(cmd.Context(), eventsCalendarID, driven.EventChange{
		Title:       eventsTitle,
		Description: eventsDesc,
		Location:    eventsLocation,
		Start:       start,
		End:         start.Add(eventsDuration),
	})
	if err != nil {
		return describeCalendarError(err)
	}

	cmd.Printf("Created event %s: %s at %s\n",
		event.ID, event.Title, event.Start.Local().Format("Mon 02 Jan 15:04"))
	if event.HTMLLink != "" {
		cmd.Printf("  %s\n", event.HTMLLink)
	}
	return nil
}

func runEventsRm(cmd *cobra.Command, args []string) error {
	if calendarService == nil {
		return errors.New("calendar service not configured")
	}

	eventID := args[0]
	if err := calendarService.DeleteEvent(cmd.Context(), eventsCalendarID, eventID); err != nil {
		return describeCalendarError(err)
	}

	cmd.Printf("Removed event %s\n", eventID)
	return nil
}

// parseLocalTime accepts a couple of friendly layouts in local time.
func parseLocalTime(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected 2006-01-02T15:04)", value)
}

// describeCalendarError maps auth failures to actionable messages.
func describeCalendarError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return errors.New("not signed in; run: restwell auth login")
	case errors.Is(err, domain.ErrReauthRequired):
		return errors.New("session expired; run: restwell auth login")
	case errors.Is(err, domain.ErrRateLimited):
		return errors.New("Google Calendar is rate limiting requests; try again shortly")
	default:
		return err
	}
}
