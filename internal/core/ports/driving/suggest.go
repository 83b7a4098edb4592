package driving

import (
	"context"
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
)

// SuggestionService proposes self-care slots and records completed sessions.
type SuggestionService interface {
	// Suggest fits slots from the sample library into free windows on the
	// given day, up to max suggestions.
	Suggest(ctx context.Context, day time.Time, max int) ([]domain.SuggestedSlot, error)

	// LogActivity records a completed wellness session, categorising it by
	// title. Optionally schedules it on the calendar when calendarID is set.
	LogActivity(ctx context.Context, title string, start time.Time, duration time.Duration, notes, calendarID string) (*domain.Activity, error)

	// History returns the most recent logged activities, newest first.
	History(ctx context.Context, limit int) ([]domain.Activity, error)
}
