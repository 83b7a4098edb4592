package calendar

import (
	"fmt"
	"time"

	calv3 "google.golang.org/api/calendar/v3"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

const allDayFormat = "2006-01-02"

// toDomainEvent converts an API event into a domain event, rejecting
// entries that lack an identifier or usable times.
func toDomainEvent(item *calv3.Event, calendarID string) (*domain.Event, error) {
	if item == nil || item.Id == "" {
		return nil, fmt.Errorf("malformed event entry")
	}

	start, allDay, err := parseEventTime(item.Start)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", item.Id, err)
	}
	end, _, err := parseEventTime(item.End)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", item.Id, err)
	}

	return &domain.Event{
		ID:          item.Id,
		CalendarID:  calendarID,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Status:      item.Status,
		HTMLLink:    item.HtmlLink,
	}, nil
}

// parseEventTime handles both timed (DateTime) and all-day (Date) values.
func parseEventTime(edt *calv3.EventDateTime) (time.Time, bool, error) {
	if edt == nil {
		return time.Time{}, false, fmt.Errorf("missing event time")
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid event time %q: %w", edt.DateTime, err)
		}
		return t, false, nil
	}
	if edt.Date != "" {
		t, err := time.Parse(allDayFormat, edt.Date)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid all-day date %q: %w", edt.Date, err)
		}
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("missing event time")
}

// toAPIEvent builds the request body for insert and patch calls.
func toAPIEvent(change driven.EventChange) *calv3.Event {
	return &calv3.Event{
		Summary:     change.Title,
		Description: change.Description,
		Location:    change.Location,
		Start: &calv3.EventDateTime{
			DateTime: change.Start.Format(time.RFC3339),
		},
		End: &calv3.EventDateTime{
			DateTime: change.End.Format(time.RFC3339),
		},
	}
}
