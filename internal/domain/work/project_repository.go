package work

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectListItem is the list projection of a project including the client
// company and manager display names. Dangling references leave them nil.
type ProjectListItem struct {
	Project
	ClientCompany *string
	ManagerName   *string
}

// ProjectRepository defines persistence operations for projects
type ProjectRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ProjectListItem, error)
	Save(ctx context.Context, project *Project) error
	SaveWithLock(ctx context.Context, project *Project, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
