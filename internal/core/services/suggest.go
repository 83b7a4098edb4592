package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driving"
)

// Ensure SuggestionService implements the interface.
var _ driving.SuggestionService = (*SuggestionService)(nil)

// Suggestions are fitted into free windows within waking hours.
const (
	dayStartHour = 8
	dayEndHour   = 21
)

// SuggestionService proposes self-care slots from the static sample library
// and records completed sessions in the activity log.
type SuggestionService struct {
	calendars  driving.CalendarService
	activities driven.ActivityStore
	now        func() time.Time
}

// NewSuggestionService creates a suggestion service. The activity store may
// be nil; history features are disabled without it.
func NewSuggestionService(calendars driving.CalendarService, activities driven.ActivityStore) *SuggestionService {
	return &SuggestionService{
		calendars:  calendars,
		activities: activities,
		now:        time.Now,
	}
}

// Suggest fits sample activities into free windows on the given day. The
// library is static by design; no slot is computed or personalised.
func (s *SuggestionService) Suggest(ctx context.Context, day time.Time, max int) ([]domain.SuggestedSlot, error) {
	if s.calendars == nil {
		return nil, domain.ErrNotImplemented
	}
	if max <= 0 {
		max = 3
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), dayStartHour, 0, 0, 0, day.Location())
	dayEnd := time.Date(day.Year(), day.Month(), day.Day(), dayEndHour, 0, 0, 0, day.Location())

	events, err := s.calendars.ListEvents(ctx, "", dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var slots []domain.SuggestedSlot
	cursor := dayStart
	if now := s.now(); now.After(cursor) && now.Before(dayEnd) {
		cursor = now.Truncate(time.Minute)
	}

	sample := 0
	for _, event := range events {
		if len(slots) >= max {
			break
		}
		if event.AllDay || !event.Start.After(cursor) {
			if event.End.After(cursor) && !event.AllDay {
				cursor = event.End
			}
			continue
		}
		slots, sample = fillWindow(slots, cursor, event.Start, sample, max)
		if event.End.After(cursor) {
			cursor = event.End
		}
	}
	if len(slots) < max && dayEnd.After(cursor) {
		slots, _ = fillWindow(slots, cursor, dayEnd, sample, max)
	}

	return slots, nil
}

// slotSpacing separates consecutive suggestions within one free window.
const slotSpacing = 90 * time.Minute

// fillWindow places sample activities in a free window, rotating through
// the library, until the window or the suggestion budget is exhausted.
func fillWindow(slots []domain.SuggestedSlot, start, end time.Time, sample, max int) ([]domain.SuggestedSlot, int) {
	cursor := start
	for len(slots) < max {
		activity := domain.SampleLibrary[sample%len(domain.SampleLibrary)]
		sample++
		if cursor.Add(activity.Duration).After(end) {
			return slots, sample
		}
		slots = append(slots, domain.SuggestedSlot{
			Title:       activity.Title,
			Category:    activity.Category,
			Start:       cursor,
			Duration:    activity.Duration,
			Description: activity.Description,
		})
		cursor = cursor.Add(slotSpacing)
	}
	return slots, sample
}

// LogActivity records a completed wellness session, optionally scheduling
// it on the calendar.
func (s *SuggestionService) LogActivity(
	ctx context.Context,
	title string,
	start time.Time,
	duration time.Duration,
	notes, calendarID string,
) (*domain.Activity, error) {
	if s.activities == nil {
		return nil, domain.ErrNotImplemented
	}
	if title == "" || duration <= 0 {
		return nil, domain.ErrInvalidInput
	}

	activity := domain.Activity{
		ID:        uuid.NewString(),
		Title:     title,
		Category:  domain.Categorize(title),
		StartedAt: start,
		Duration:  duration,
		Notes:     notes,
		CreatedAt: s.now(),
	}

	if calendarID != "" && s.calendars != nil {
		event, err := s.calendars.CreateEvent(ctx, calendarID, driven.EventChange{
			Title:       title,
			Description: notes,
			Start:       start,
			End:         start.Add(duration),
		})
		if err != nil {
			return nil, fmt.Errorf("schedule activity: %w", err)
		}
		activity.EventID = event.ID
	}

	if err := s.activities.Save(ctx, activity); err != nil {
		return nil, fmt.Errorf("save activity: %w", err)
	}
	return &activity, nil
}

// History returns the most recent logged activities, newest first.
func (s *SuggestionService) History(ctx context.Context, limit int) ([]domain.Activity, error) {
	if s.activities == nil {
		return nil, domain.ErrNotImplemented
	}
	if limit <= 0 {
		limit = 20
	}
	return s.activities.List(ctx, limit)
}
