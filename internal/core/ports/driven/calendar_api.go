package driven

import (
	"context"
	"net/http"
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
)

// BearerRequester is the only sanctioned path for Calendar I/O. The session
// controller implements it: every call carries a valid bearer token, with
// exactly one refresh-and-retry on 401.
type BearerRequester interface {
	// Request performs an authenticated HTTP call. The body, if any, is
	// replayable so the single 401 retry can resend it.
	Request(ctx context.Context, method, url string, body []byte) (*http.Response, error)
}

// EventChange carries the writable fields of an event for create and update
// calls.
type EventChange struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// CalendarAPI is the Google Calendar surface consumed by core services.
// Implementations validate API responses at the boundary and convert them to
// domain types; malformed payloads are rejected, never passed through.
type CalendarAPI interface {
	// ListCalendars returns the user's calendar list.
	ListCalendars(ctx context.Context) ([]domain.Calendar, error)

	// ListEvents returns events on one calendar within [from, to).
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]domain.Event, error)

	// CreateEvent inserts an event and returns its stored form.
	CreateEvent(ctx context.Context, calendarID string, change EventChange) (*domain.Event, error)

	// UpdateEvent applies a change to an existing event.
	UpdateEvent(ctx context.Context, calendarID, eventID string, change EventChange) (*domain.Event, error)

	// DeleteEvent removes an event.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}
