package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest self-care slots for the day",
	Long: `Suggest wellness activities that fit the free gaps in your calendar.

Suggestions come from a small built-in library (walks, stretches, breathing
exercises) fitted around your existing events for the chosen day.

Examples:
  restwell suggest
  restwell suggest --date 2026-09-03 --max 5`,
	RunE: runSuggest,
}

// Flags for suggest.
var (
	suggestDate string
	suggestMax  int
)

func init() {
	suggestCmd.Flags().StringVar(
		&suggestDate, "date", "", "Day to plan (2006-01-02, defaults to today)")
	suggestCmd.Flags().IntVar(
		&suggestMax, "max", 3, "Maximum number of suggestions")

	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	if suggestionService == nil {
		return errors.New("suggestion service not configured")
	}

	day := time.Now()
	if suggestDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", suggestDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q (expected 2006-01-02)", suggestDate)
		}
		day = parsed
	}

	slots, err := suggestionService.Suggest(cmd.Context(), day, suggestMax)
	if err != nil {
		return describeCalendarError(err)
	}

	if len(slots) == 0 {
		cmd.Println("No free windows found for suggestions that day.")
		return nil
	}

	cmd.Printf("Suggestions for %s:\n\n", day.Format("Monday 02 January"))
	for _, slot := range slots {
		cmd.Printf("  %s - %s  %s (%s)\n",
			slot.Start.Local().Format("15:04"),
			slot.End().Local().Format("15:04"),
			slot.Title, slot.Category)
		if slot.Description != "" {
			cmd.Printf("      %s\n", slot.Description)
		}
	}
	cmd.Println()
	cmd.Println("Log one with: restwell log add --title \"...\" --start <time>")
	return nil
}
