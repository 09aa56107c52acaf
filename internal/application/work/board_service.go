package work

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
)

// BoardService serves the kanban board and applies drag and drop moves
type BoardService struct {
	taskRepo    work.TaskRepository
	queries     cache.QueryCache
	invalidator cache.Invalidator
	events      shared.EventPublisher
}

// NewBoardService creates a new BoardService
func NewBoardService(
	taskRepo work.TaskRepository,
	queries cache.QueryCache,
	invalidator cache.Invalidator,
	events shared.EventPublisher,
) *BoardService {
	return &BoardService{
		taskRepo:    taskRepo,
		queries:     queries,
		invalidator: invalidator,
		events:      events,
	}
}

// GetBoard returns every task bucketed into board columns. Empty columns are
// present in the response so the client can always render all four.
func (s *BoardService) GetBoard(ctx context.Context, filter TaskListFilter) (*BoardResponse, error) {
	domainFilter := buildTaskFilter(filter)
	// The board renders all matching tasks at once
	domainFilter.Page = 0
	domainFilter.PageSize = 0

	key := cache.Key(tasksScope, "board", filterKey(domainFilter))
	response, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (BoardResponse, error) {
		items, err := s.taskRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return BoardResponse{}, err
		}

		grouped := work.GroupByStatus(items)
		columns := make(map[string][]TaskListResponse, len(grouped))
		for status, tasks := range grouped {
			columns[string(status)] = ToTaskListResponses(tasks)
		}
		return BoardResponse{Columns: columns}, nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// MoveTask completes a drag of a task onto a board column. A drop outside
// any column or onto the source column changes nothing and skips the write.
func (s *BoardService) MoveTask(ctx context.Context, taskID uuid.UUID, req MoveTaskRequest) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	session, err := work.BeginDrag(task)
	if err != nil {
		return nil, err
	}

	var target *work.TaskStatus
	if req.Status != nil {
		status := work.TaskStatus(*req.Status)
		target = &status
	}

	change, err := session.CompleteDrag(target)
	if err != nil {
		return nil, err
	}
	if change == nil {
		response := ToTaskResponse(task)
		return &response, nil
	}

	expectedVersion := task.Version
	if err := task.MoveToStatus(change.To); err != nil {
		return nil, err
	}

	if err := s.taskRepo.SaveWithLock(ctx, task, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, task)
	s.invalidate(ctx, tasksScope, dashboardScope)

	response := ToTaskResponse(task)
	return &response, nil
}

func (s *BoardService) publishEvents(ctx context.Context, task *work.Task) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, task.GetDomainEvents()...)
	task.ClearDomainEvents()
}

func (s *BoardService) invalidate(ctx context.Context, scopes ...string) {
	for _, scope := range scopes {
		s.queries.InvalidateScope(scope)
		if s.invalidator != nil {
			_ = s.invalidator.PublishScope(ctx, scope)
		}
	}
}
