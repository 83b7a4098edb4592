package calendar

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

// plainRequester forwards requests without auth, for test servers.
type plainRequester struct {
	client *http.Client
}

func (p *plainRequester) Request(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	return p.client.Do(req)
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(&plainRequester{client: server.Client()}, server.URL)
}

func TestListCalendars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/calendarList", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":"primary","summary":"Personal","primary":true,"timeZone":"Europe/London"},
			{"id":"work@example.com","summary":"Work"}
		]}`))
	}))
	defer server.Close()

	calendars, err := newTestClient(server).ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, calendars, 2)
	assert.Equal(t, "primary", calendars[0].ID)
	assert.True(t, calendars[0].Primary)
	assert.Equal(t, "Europe/London", calendars[0].TimeZone)
	assert.Equal(t, "work@example.com", calendars[1].ID)
	assert.False(t, calendars[1].Primary)
}

func TestListCalendarsRejectsEntryWithoutID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"summary":"no id"}]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).ListCalendars(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestListEventsPaginates(t *testing.T) {
	pages := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		assert.NotEmpty(t, r.URL.Query().Get("timeMin"))
		pages++
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{"nextPageToken":"page2","items":[
				{"id":"ev1","summary":"Yoga","status":"confirmed",
				 "start":{"dateTime":"2026-09-01T09:00:00Z"},
				 "end":{"dateTime":"2026-09-01T10:00:00Z"}}
			]}`))
			return
		}
		w.Write([]byte(`{"items":[
			{"id":"ev2","summary":"Holiday",
			 "start":{"date":"2026-09-02"},
			 "end":{"date":"2026-09-03"}}
		]}`))
	}))
	defer server.Close()

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	events, err := newTestClient(server).ListEvents(context.Background(), "primary", from, from.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	require.Len(t, events, 2)

	assert.Equal(t, "ev1", events[0].ID)
	assert.Equal(t, "primary", events[0].CalendarID)
	assert.False(t, events[0].AllDay)
	assert.Equal(t, time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), events[0].Start.UTC())

	assert.Equal(t, "ev2", events[1].ID)
	assert.True(t, events[1].AllDay)
	assert.Equal(t, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), events[1].Start)
}

func TestListEventsRejectsEventWithoutTimes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"id":"ev1","summary":"broken"}]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).ListEvents(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing event time")
}

func TestCreateEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		w.Write([]byte(`{"id":"new-ev","summary":"Evening walk","status":"confirmed",
			"htmlLink":"https://calendar.example/new-ev",
			"start":{"dateTime":"2026-09-01T18:00:00Z"},
			"end":{"dateTime":"2026-09-01T18:30:00Z"}}`))
	}))
	defer server.Close()

	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	event, err := newTestClient(server).CreateEvent(context.Background(), "primary", driven.EventChange{
		Title: "Evening walk",
		Start: start,
		End:   start.Add(30 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, "new-ev", event.ID)
	assert.Equal(t, "Evening walk", event.Title)
	assert.Equal(t, "https://calendar.example/new-ev", event.HTMLLink)
}

func TestDeleteEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/calendars/primary/events/ev1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := newTestClient(server).DeleteEvent(context.Background(), "primary", "ev1")
	require.NoError(t, err)
}

func TestRateLimitedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server).ListCalendars(context.Background())
	require.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestServerErrorSurfacesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server).ListCalendars(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
