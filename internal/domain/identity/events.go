package identity

import "github.com/crm/backend/internal/domain/shared"

// Event types for the identity domain
const (
	EventUserCreated = "identity.user.created"
)

// UserCreatedEvent is raised when a user profile is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// NewUserCreatedEvent creates a UserCreatedEvent from a user
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventUserCreated, "User", user.ID),
		Email:           user.Email,
		FullName:        user.FullName,
		Role:            user.Role,
	}
}
