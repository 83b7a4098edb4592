package domain

import (
	"strings"
	"time"
)

// Category classifies a wellness activity.
type Category string

const (
	// CategoryMovement covers exercise: walks, runs, stretching, yoga.
	CategoryMovement Category = "movement"
	// CategoryMindfulness covers meditation, breathing, journaling.
	CategoryMindfulness Category = "mindfulness"
	// CategoryRest covers naps, breaks, and screen-free time.
	CategoryRest Category = "rest"
	// CategorySocial covers calls and time with friends or family.
	CategorySocial Category = "social"
	// CategoryGeneral is the fallback when no keyword matches.
	CategoryGeneral Category = "general"
)

// categoryKeywords maps lowercase title keywords to categories. First match
// wins, checked in the order below.
var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{CategoryMovement, []string{"walk", "run", "stretch", "yoga", "gym", "workout", "bike", "swim"}},
	{CategoryMindfulness, []string{"meditat", "breath", "journal", "mindful", "reflect"}},
	{CategoryRest, []string{"nap", "rest", "break", "unplug", "sleep", "wind down"}},
	{CategorySocial, []string{"call", "coffee", "lunch with", "dinner with", "catch up", "friend"}},
}

// Categorize derives a category from an activity title by keyword matching.
func Categorize(title string) Category {
	lower := strings.ToLower(title)
	for _, entry := range categoryKeywords {
		for _, word := range entry.words {
			if strings.Contains(lower, word) {
				return entry.category
			}
		}
	}
	return CategoryGeneral
}

// Activity is a completed (or planned) wellness session recorded in the
// activity log.
type Activity struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// Title is the user-facing activity name.
	Title string `json:"title"`
	// Category is derived from the title via Categorize.
	Category Category `json:"category"`
	// EventID links to the Google Calendar event, if one was created.
	EventID string `json:"event_id,omitempty"`
	// StartedAt is when the session started.
	StartedAt time.Time `json:"started_at"`
	// Duration is how long the session lasted.
	Duration time.Duration `json:"duration"`
	// Notes holds optional free-form notes.
	Notes string `json:"notes,omitempty"`
	// CreatedAt is when the record was written.
	CreatedAt time.Time `json:"created_at"`
}
