package domain

import "time"

// Calendar is one entry from the user's calendar list.
type Calendar struct {
	// ID is the Google Calendar identifier.
	ID string `json:"id"`
	// Summary is the calendar's display name.
	Summary string `json:"summary"`
	// Primary marks the account's primary calendar.
	Primary bool `json:"primary"`
	// TimeZone is the calendar's IANA time zone.
	TimeZone string `json:"time_zone"`
}

// Event is a calendar event in domain form, converted from the API
// representation at the adapter boundary.
type Event struct {
	// ID is the Google Calendar event identifier.
	ID string `json:"id"`
	// CalendarID is the calendar the event belongs to.
	CalendarID string `json:"calendar_id"`
	// Title is the event summary.
	Title string `json:"title"`
	// Description is the free-form event body.
	Description string `json:"description,omitempty"`
	// Location is the event location, if any.
	Location string `json:"location,omitempty"`
	// Start is the event start time.
	Start time.Time `json:"start"`
	// End is the event end time.
	End time.Time `json:"end"`
	// AllDay marks date-only events.
	AllDay bool `json:"all_day"`
	// Status is the provider status (confirmed, tentative, cancelled).
	Status string `json:"status"`
	// HTMLLink points at the event in the Calendar web UI.
	HTMLLink string `json:"html_link,omitempty"`
}

// Overlaps returns true if the event overlaps the [start, end) window.
func (e Event) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}
