package work

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityType categorizes feed entries
type ActivityType string

const (
	ActivityNote          ActivityType = "note"
	ActivityEmail         ActivityType = "email"
	ActivityCall          ActivityType = "call"
	ActivityMeeting       ActivityType = "meeting"
	ActivityTask          ActivityType = "task"
	ActivityDealUpdate    ActivityType = "deal_update"
	ActivityProjectUpdate ActivityType = "project_update"
)

// IsValid checks if the activity type is a known value
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityNote, ActivityEmail, ActivityCall, ActivityMeeting,
		ActivityTask, ActivityDealUpdate, ActivityProjectUpdate:
		return true
	}
	return false
}

// Activity is an append-only feed entry linked to some entity.
// Entries are never updated, so only CreatedAt is carried.
type Activity struct {
	ID         uuid.UUID
	Type       ActivityType
	Title      string
	Content    *string
	EntityType string
	EntityID   uuid.UUID
	UserID     *uuid.UUID
	Metadata   map[string]any
	CreatedAt  time.Time
}

// NewActivity creates a feed entry
func NewActivity(activityType ActivityType, title, entityType string, entityID uuid.UUID) (*Activity, error) {
	fields := map[string]string{}
	if !activityType.IsValid() {
		fields["type"] = "Unknown activity type"
	}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "Title is required"
	}
	if strings.TrimSpace(entityType) == "" {
		fields["entity_type"] = "Entity type is required"
	}
	if len(fields) > 0 {
		return nil, shared.NewValidationError(fields)
	}

	return &Activity{
		ID:         uuid.New(),
		Type:       activityType,
		Title:      strings.TrimSpace(title),
		EntityType: strings.TrimSpace(entityType),
		EntityID:   entityID,
		Metadata:   map[string]any{},
		CreatedAt:  time.Now(),
	}, nil
}

// WithContent attaches body text to the entry
func (a *Activity) WithContent(content *string) *Activity {
	a.Content = normalizeOptional(content)
	return a
}

// WithUser records the acting user
func (a *Activity) WithUser(userID *uuid.UUID) *Activity {
	a.UserID = userID
	return a
}

// WithMetadata attaches structured metadata
func (a *Activity) WithMetadata(metadata map[string]any) *Activity {
	if metadata != nil {
		a.Metadata = metadata
	}
	return a
}
