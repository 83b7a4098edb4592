package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
)

// activityStore implements driven.ActivityStore.
type activityStore struct {
	store *Store
}

var _ driven.ActivityStore = (*activityStore)(nil)

// Save stores or updates an activity.
func (s *activityStore) Save(ctx context.Context, activity domain.Activity) error {
	if activity.ID == "" {
		return domain.ErrInvalidInput
	}

	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO activities (id, title, category, event_id, started_at, duration_seconds, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			event_id = excluded.event_id,
			started_at = excluded.started_at,
			duration_seconds = excluded.duration_seconds,
			notes = excluded.notes
	`, activity.ID, activity.Title, string(activity.Category), nullString(activity.EventID),
		activity.StartedAt.Format(time.RFC3339), int64(activity.Duration.Seconds()),
		nullString(activity.Notes), activity.CreatedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("saving activity: %w", err)
	}
	return nil
}

// Get retrieves an activity by ID.
func (s *activityStore) Get(ctx context.Context, id string) (*domain.Activity, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, category, event_id, started_at, duration_seconds, notes, created_at
		FROM activities WHERE id = ?
	`, id)

	activity, err := scanActivityRow(row)
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// List returns the most recent activities, newest first.
func (s *activityStore) List(ctx context.Context, limit int) ([]domain.Activity, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, category, event_id, started_at, duration_seconds, notes, created_at
		FROM activities
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ListByCategory returns recent activities in one category, newest first.
func (s *activityStore) ListByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.Activity, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, category, event_id, started_at, duration_seconds, notes, created_at
		FROM activities
		WHERE category = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("querying activities by category: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// Delete removes an activity by ID.
func (s *activityStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	return nil
}

// scanActivityRow scans a single activity row.
func scanActivityRow(row *sql.Row) (*domain.Activity, error) {
	var activity domain.Activity
	var category, startedAt, createdAt string
	var eventID, notes sql.NullString
	var durationSeconds int64

	if err := row.Scan(&activity.ID, &activity.Title, &category, &eventID,
		&startedAt, &durationSeconds, &notes, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning activity: %w", err)
	}

	fillActivity(&activity, category, startedAt, createdAt, eventID, notes, durationSeconds)
	return &activity, nil
}

// scanActivities scans multiple activity rows.
func scanActivities(rows *sql.Rows) ([]domain.Activity, error) {
	var activities []domain.Activity //nolint:prealloc // size unknown from query
	for rows.Next() {
		var activity domain.Activity
		var category, startedAt, createdAt string
		var eventID, notes sql.NullString
		var durationSeconds int64

		if err := rows.Scan(&activity.ID, &activity.Title, &category, &eventID,
			&startedAt, &durationSeconds, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}

		fillActivity(&activity, category, startedAt, createdAt, eventID, notes, durationSeconds)
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}

	return activities, nil
}

func fillActivity(activity *domain.Activity, category, startedAt, createdAt string,
	eventID, notes sql.NullString, durationSeconds int64) {
	activity.Category = domain.Category(category)
	activity.EventID = eventID.String
	activity.Notes = notes.String
	activity.Duration = time.Duration(durationSeconds) * time.Second
	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		activity.StartedAt = t
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		activity.CreatedAt = t
	}
}
