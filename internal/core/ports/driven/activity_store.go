package driven

import (
	"context"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
)

// ActivityStore persists the wellness activity log. Unlike credentials,
// activity history is app data and is stored durably.
type ActivityStore interface {
	// Save stores an activity. Creates if new, updates if exists.
	Save(ctx context.Context, activity domain.Activity) error

	// Get retrieves an activity by ID.
	Get(ctx context.Context, id string) (*domain.Activity, error)

	// List returns the most recent activities, newest first.
	List(ctx context.Context, limit int) ([]domain.Activity, error)

	// ListByCategory returns recent activities in one category, newest first.
	ListByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.Activity, error)

	// Delete removes an activity by ID.
	Delete(ctx context.Context, id string) error
}
