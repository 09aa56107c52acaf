package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactListItem is the list projection of a contact including the
// assignee's display fields. Dangling assignments leave them nil.
type ContactListItem struct {
	Contact
	AssigneeName   *string
	AssigneeAvatar *string
}

// ContactRepository defines persistence operations for contacts
type ContactRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ContactListItem, error)
	Save(ctx context.Context, contact *Contact) error
	SaveWithLock(ctx context.Context, contact *Contact, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
