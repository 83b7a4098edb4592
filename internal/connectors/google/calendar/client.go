// Package calendar implements the Calendar API port over the authenticated
// request path. Responses are decoded into the official calendar/v3 schemas
// and validated before conversion to domain types; malformed payloads are
// rejected at this boundary.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	calv3 "google.golang.org/api/calendar/v3"

	"github.com/restwell-app/restwell-cli/internal/connectors/google"
	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.CalendarAPI = (*Client)(nil)

// DefaultBaseURL is the Calendar API base.
const DefaultBaseURL = "https://www.googleapis.com/calendar/v3"

// maxResultsPerPage caps one events page; well under quota trouble.
const maxResultsPerPage = 250

// Client is the Google Calendar client. Every call goes through the session
// controller's request wrapper, so tokens are validated and refreshed
// before each request and the single 401 retry applies uniformly.
type Client struct {
	requester driven.BearerRequester
	limiter   *google.RateLimiter
	baseURL   string
}

// NewClient creates a Calendar client. baseURL overrides the API base for
// tests; empty means production.
func NewClient(requester driven.BearerRequester, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		requester: requester,
		limiter:   google.NewRateLimiter(google.DefaultCalendarRateLimit),
		baseURL:   baseURL,
	}
}

// ListCalendars returns the user's calendar list.
func (c *Client) ListCalendars(ctx context.Context) ([]domain.Calendar, error) {
	body, err := c.call(ctx, http.MethodGet, c.baseURL+"/users/me/calendarList", nil)
	if err != nil {
		return nil, err
	}

	var list calv3.CalendarList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode calendar list: %w", err)
	}

	calendars := make([]domain.Calendar, 0, len(list.Items))
	for _, item := range list.Items {
		if item == nil || item.Id == "" {
			return nil, fmt.Errorf("malformed calendar list entry")
		}
		calendars = append(calendars, domain.Calendar{
			ID:       item.Id,
			Summary:  item.Summary,
			Primary:  item.Primary,
			TimeZone: item.TimeZone,
		})
	}
	return calendars, nil
}

// ListEvents returns events within [from, to). Recurring events are
// expanded into single instances.
func (c *Client) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]domain.Event, error) {
	var events []domain.Event
	pageToken := ""

	for {
		query := url.Values{}
		query.Set("timeMin", from.Format(time.RFC3339))
		query.Set("timeMax", to.Format(time.RFC3339))
		query.Set("singleEvents", "true")
		query.Set("orderBy", "startTime")
		query.Set("maxResults", strconv.Itoa(maxResultsPerPage))
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(calendarID), query.Encode())
		body, err := c.call(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		var page calv3.Events
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}

		for _, item := range page.Items {
			event, err := toDomainEvent(item, calendarID)
			if err != nil {
				return nil, err
			}
			events = append(events, *event)
		}

		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

// CreateEvent inserts an event.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, change driven.EventChange) (*domain.Event, error) {
	payload, err := json.Marshal(toAPIEvent(change))
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(calendarID))
	body, err := c.call(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	return decodeEvent(body, calendarID)
}

// UpdateEvent applies a change to an existing event.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, change driven.EventChange) (*domain.Event, error) {
	payload, err := json.Marshal(toAPIEvent(change))
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL, url.PathEscape(calendarID), url.PathEscape(eventID))
	body, err := c.call(ctx, http.MethodPatch, endpoint, payload)
	if err != nil {
		return nil, err
	}

	return decodeEvent(body, calendarID)
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL, url.PathEscape(calendarID), url.PathEscape(eventID))
	_, err := c.call(ctx, http.MethodDelete, endpoint, nil)
	return err
}

// call performs one rate-limited request through the authenticated wrapper
// and returns the response body for 2xx statuses.
func (c *Client) call(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.requester.Request(ctx, method, endpoint, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		c.limiter.RecordRateLimitError(retryAfter)
		return nil, domain.ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("calendar api %s %s: status %d", method, endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func decodeEvent(body []byte, calendarID string) (*domain.Event, error) {
	var item calv3.Event
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return toDomainEvent(&item, calendarID)
}
