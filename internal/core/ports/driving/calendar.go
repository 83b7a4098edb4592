package driving

import (
	"context"
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

// CalendarService exposes calendar CRUD to the CLI and suggestion layers.
// All calls end up on the authenticated request path.
type CalendarService interface {
	// ListCalendars returns the user's calendar list.
	ListCalendars(ctx context.Context) ([]domain.Calendar, error)

	// ListEvents returns events on a calendar within [from, to), sorted by
	// start time. An empty calendarID means the configured default.
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]domain.Event, error)

	// CreateEvent inserts an event.
	CreateEvent(ctx context.Context, calendarID string, change driven.EventChange) (*domain.Event, error)

	// UpdateEvent updates an event.
	UpdateEvent(ctx context.Context, calendarID, eventID string, change driven.EventChange) (*domain.Event, error)

	// DeleteEvent removes an event.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}
