package work

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TaskListItem is the list projection of a task including the project name
// and assignee display fields. Dangling references leave them nil.
type TaskListItem struct {
	Task
	ProjectName    *string
	AssigneeName   *string
	AssigneeAvatar *string
}

// TaskRepository defines persistence operations for tasks
type TaskRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]TaskListItem, error)
	FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]TaskListItem, error)
	Save(ctx context.Context, task *Task) error
	SaveWithLock(ctx context.Context, task *Task, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context) (map[TaskStatus]int64, error)
}
