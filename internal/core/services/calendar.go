package services

import (
	"context"
	"sort"
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driving"
)

// Ensure CalendarService implements the interface.
var _ driving.CalendarService = (*CalendarService)(nil)

// CalendarService exposes calendar CRUD on top of the Calendar API port.
// Every call ultimately travels the authenticated request path owned by the
// session controller.
type CalendarService struct {
	api             driven.CalendarAPI
	defaultCalendar string
}

// NewCalendarService creates a calendar service. defaultCalendar is used
// when callers pass an empty calendar ID; "primary" when empty.
func NewCalendarService(api driven.CalendarAPI, defaultCalendar string) *CalendarService {
	if defaultCalendar == "" {
		defaultCalendar = "primary"
	}
	return &CalendarService{
		api:             api,
		defaultCalendar: defaultCalendar,
	}
}

// ListCalendars returns the user's calendar list.
func (s *CalendarService) ListCalendars(ctx context.Context) ([]domain.Calendar, error) {
	if s.api == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.api.ListCalendars(ctx)
}

// ListEvents returns events within [from, to) sorted by start time.
func (s *CalendarService) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]domain.Event, error) {
	if s.api == nil {
		return nil, domain.ErrNotImplemented
	}
	if !to.After(from) {
		return nil, domain.ErrInvalidInput
	}

	events, err := s.api.ListEvents(ctx, s.resolve(calendarID), from, to)
	if err != nil {
		return nil, err
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// CreateEvent inserts an event.
func (s *CalendarService) CreateEvent(ctx context.Context, calendarID string, change driven.EventChange) (*domain.Event, error) {
	if s.api == nil {
		return nil, domain.ErrNotImplemented
	}
	if change.Title == "" || !change.End.After(change.Start) {
		return nil, domain.ErrInvalidInput
	}
	return s.api.CreateEvent(ctx, s.resolve(calendarID), change)
}

// UpdateEvent updates an event.
func (s *CalendarService) UpdateEvent(ctx context.Context, calendarID, eventID string, change driven.EventChange) (*domain.Event, error) {
	if s.api == nil {
		return nil, domain.ErrNotImplemented
	}
	if eventID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.api.UpdateEvent(ctx, s.resolve(calendarID), eventID, change)
}

// DeleteEvent removes an event.
func (s *CalendarService) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if s.api == nil {
		return domain.ErrNotImplemented
	}
	if eventID == "" {
		return domain.ErrInvalidInput
	}
	return s.api.DeleteEvent(ctx, s.resolve(calendarID), eventID)
}

func (s *CalendarService) resolve(calendarID string) string {
	if calendarID == "" {
		return s.defaultCalendar
	}
	return calendarID
}
