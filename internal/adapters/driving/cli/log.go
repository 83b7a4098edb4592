package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record and review wellness activities",
	Long: `Record completed wellness sessions and review your history.

Logged activities are categorised by title (movement, mindfulness, rest,
social) and stored locally. Pass --calendar to also block the session on
your Google Calendar.

Examples:
  restwell log add --title "Morning run" --duration 25m
  restwell log add --title "Meditation" --start 2026-09-02T07:30 --calendar primary
  restwell log list --limit 20`,
}

var logAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a wellness session",
	RunE:  runLogAdd,
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent activity history",
	RunE:  runLogList,
}

// Flags for log commands.
var (
	logTitle    string
	logStart    string
	logDuration time.Duration
	logNotes    string
	logCalendar string
	logLimit    int
)

func init() {
	logAddCmd.Flags().StringVar(
		&logTitle, "title", "", "Activity title")
	logAddCmd.Flags().StringVar(
		&logStart, "start", "", "Start time (2006-01-02T15:04, defaults to now)")
	logAddCmd.Flags().DurationVar(
		&logDuration, "duration", 20*time.Minute, "Session duration")
	logAddCmd.Flags().StringVar(
		&logNotes, "notes", "", "Optional notes")
	logAddCmd.Flags().StringVar(
		&logCalendar, "calendar", "", "Also create a calendar event on this calendar")

	logListCmd.Flags().IntVar(
		&logLimit, "limit", 10, "Number of entries to show")

	logCmd.AddCommand(logAddCmd)
	logCmd.AddCommand(logListCmd)
	rootCmd.AddCommand(logCmd)
}

func runLogAdd(cmd *cobra.Command, _ []string) error {
	if suggestionService == nil {
		return errors.New("suggestion service not configured")
	}
	if logTitle == "" {
		return errors.New("--title is required")
	}

	start := time.Now()
	if logStart != "" {
		parsed, err := parseLocalTime(logStart)
		if err != nil {
			return err
		}
		start = parsed
	}

	activity, err := suggestionService.LogActivity(
		cmd.Context(), logTitle, start, logDuration, logNotes, logCalendar)
	if err != nil {
		return describeCalendarError(err)
	}

	cmd.Printf("Logged %q (%s, %s)\n", activity.Title, activity.Category, activity.Duration)
	if activity.EventID != "" {
		cmd.Printf("  Scheduled as calendar event %s\n", activity.EventID)
	}
	return nil
}

func runLogList(cmd *cobra.Command, _ []string) error {
	if suggestionService == nil {
		return errors.New("suggestion service not configured")
	}
	if logLimit < 1 {
		return errors.New("--limit must be at least 1")
	}

	activities, err := suggestionService.History(cmd.Context(), logLimit)
	if err != nil {
		return err
	}

	if len(activities) == 0 {
		cmd.Println("No activities logged yet.")
		cmd.Println("Record one with: restwell log add --title \"...\"")
		return nil
	}

	for _, activity := range activities {
		cmd.Printf("%-18s %-12s %-30s %s\n",
			activity.StartedAt.Local().Format("02 Jan 15:04"),
			activity.Category,
			activity.Title,
			activity.Duration)
	}
	return nil
}
