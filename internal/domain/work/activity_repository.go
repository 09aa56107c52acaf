package work

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityListItem is the feed projection including the acting user's
// display fields. Dangling user references leave them nil.
type ActivityListItem struct {
	Activity
	UserName   *string
	UserAvatar *string
}

// ActivityRepository defines persistence operations for the activity feed.
// The feed is append-only; there is no update operation.
type ActivityRepository interface {
	FindAll(ctx context.Context, filter shared.Filter) ([]ActivityListItem, error)
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter shared.Filter) ([]ActivityListItem, error)
	Save(ctx context.Context, activity *Activity) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
