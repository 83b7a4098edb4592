package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
)

// fakeActivityStore records saves in memory.
type fakeActivityStore struct {
	saved []domain.Activity
}

func (f *fakeActivityStore) Save(_ context.Context, activity domain.Activity) error {
	f.saved = append(f.saved, activity)
	return nil
}

func (f *fakeActivityStore) Get(_ context.Context, id string) (*domain.Activity, error) {
	for i := range f.saved {
		if f.saved[i].ID == id {
			return &f.saved[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeActivityStore) List(_ context.Context, limit int) ([]domain.Activity, error) {
	if limit > len(f.saved) {
		limit = len(f.saved)
	}
	out := make([]domain.Activity, limit)
	for i := 0; i < limit; i++ {
		out[i] = f.saved[len(f.saved)-1-i]
	}
	return out, nil
}

func (f *fakeActivityStore) ListByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.Activity, error) {
	var out []domain.Activity
	for i := len(f.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if f.saved[i].Category == category {
			out = append(out, f.saved[i])
		}
	}
	return out, nil
}

func (f *fakeActivityStore) Delete(_ context.Context, id string) error {
	for i := range f.saved {
		if f.saved[i].ID == id {
			f.saved = append(f.saved[:i], f.saved[i+1:]...)
			return nil
		}
	}
	return nil
}

func newSuggestFixture(events []domain.Event) (*SuggestionService, *fakeActivityStore) {
	api := &fakeCalendarAPI{events: events}
	calendars := NewCalendarService(api, "")
	store := &fakeActivityStore{}
	svc := NewSuggestionService(calendars, store)
	// Freeze "now" well before the planning day so the cursor starts at
	// the beginning of the suggestion window.
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestSuggest_EmptyDayFillsFromMorning(t *testing.T) {
	svc, _ := newSuggestFixture(nil)
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	slots, err := svc.Suggest(context.Background(), day, 3)

	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC), slots[1].Start)
	assert.Equal(t, domain.SampleLibrary[0].Title, slots[0].Title)
	assert.Equal(t, domain.SampleLibrary[1].Title, slots[1].Title)
}

func TestSuggest_AvoidsBusyMorning(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	busy := domain.Event{
		ID:    "standup",
		Start: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	svc, _ := newSuggestFixture([]domain.Event{busy})

	slots, err := svc.Suggest(context.Background(), day, 2)

	require.NoError(t, err)
	require.NotEmpty(t, slots)
	// First free moment is when the meeting ends
	assert.Equal(t, busy.End, slots[0].Start)
	for _, slot := range slots {
		assert.False(t, slot.Start.Before(busy.End), "slot overlaps busy block")
	}
}

func TestSuggest_FitsGapBetweenEvents(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	events := []domain.Event{
		{ID: "am", Start: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC), End: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "pm", Start: time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC), End: time.Date(2026, 9, 1, 20, 30, 0, 0, time.UTC)},
	}
	svc, _ := newSuggestFixture(events)

	slots, err := svc.Suggest(context.Background(), day, 1)

	require.NoError(t, err)
	require.Len(t, slots, 1)
	// The 30-minute gap fits the first 20-minute sample
	assert.Equal(t, events[0].End, slots[0].Start)
	assert.False(t, slots[0].End().After(events[1].Start))
}

func TestSuggest_RespectsMax(t *testing.T) {
	svc, _ := newSuggestFixture(nil)
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	slots, err := svc.Suggest(context.Background(), day, 2)

	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestLogActivity_CategorisesAndSaves(t *testing.T) {
	svc, store := newSuggestFixture(nil)
	start := time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC)

	activity, err := svc.LogActivity(context.Background(), "Morning run", start, 25*time.Minute, "felt great", "")

	require.NoError(t, err)
	assert.NotEmpty(t, activity.ID)
	assert.Equal(t, domain.CategoryMovement, activity.Category)
	assert.Empty(t, activity.EventID)
	require.Len(t, store.saved, 1)
	assert.Equal(t, activity.ID, store.saved[0].ID)
}

func TestLogActivity_SchedulesOnCalendar(t *testing.T) {
	api := &fakeCalendarAPI{}
	calendars := NewCalendarService(api, "")
	store := &fakeActivityStore{}
	svc := NewSuggestionService(calendars, store)

	start := time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)
	activity, err := svc.LogActivity(context.Background(), "Lunchtime walk", start, 30*time.Minute, "", "primary")

	require.NoError(t, err)
	assert.Equal(t, "ev-created", activity.EventID)
	require.NotNil(t, api.created)
	assert.Equal(t, "Lunchtime walk", api.created.Title)
	assert.Equal(t, start.Add(30*time.Minute), api.created.End)
}

func TestLogActivity_Validation(t *testing.T) {
	svc, _ := newSuggestFixture(nil)

	_, err := svc.LogActivity(context.Background(), "", time.Now(), 10*time.Minute, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.LogActivity(context.Background(), "Nap", time.Now(), 0, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistory_NewestFirst(t *testing.T) {
	svc, _ := newSuggestFixture(nil)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC)
	_, err := svc.LogActivity(ctx, "Morning run", base, 25*time.Minute, "", "")
	require.NoError(t, err)
	_, err = svc.LogActivity(ctx, "Meditation", base.Add(time.Hour), 10*time.Minute, "", "")
	require.NoError(t, err)

	history, err := svc.History(ctx, 10)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Meditation", history[0].Title)
	assert.Equal(t, "Morning run", history[1].Title)
}
