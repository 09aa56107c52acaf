package work

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
)

// taskListPage bundles a list page with its total for caching
type taskListPage struct {
	Items []TaskListResponse
	Total int64
}

// TaskService handles task-related business operations
type TaskService struct {
	taskRepo    work.TaskRepository
	queries     cache.QueryCache
	invalidator cache.Invalidator
	events      shared.EventPublisher
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo work.TaskRepository,
	queries cache.QueryCache,
	invalidator cache.Invalidator,
	events shared.EventPublisher,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		queries:     queries,
		invalidator: invalidator,
		events:      events,
	}
}

// Create creates a new task in the todo column
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error) {
	priority := work.PriorityMedium
	if req.Priority != "" {
		priority = work.Priority(req.Priority)
	}

	task, err := work.NewTask(req.Title, priority)
	if err != nil {
		return nil, err
	}

	task.SetDescription(optional(req.Description))
	task.AttachToProject(req.ProjectID)
	task.AssignTo(req.AssignedTo)
	task.SetCreator(req.CreatedBy)
	task.SetDueDate(req.DueDate)
	if req.EstimatedHours != nil {
		if err := task.SetHours(req.EstimatedHours, nil); err != nil {
			return nil, err
		}
	}
	if len(req.Tags) > 0 {
		task.SetTags(req.Tags)
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, task)
	s.invalidate(ctx, tasksScope, dashboardScope)

	response := ToTaskResponse(task)
	return &response, nil
}

// GetByID retrieves a task by ID
func (s *TaskService) GetByID(ctx context.Context, taskID uuid.UUID) (*TaskResponse, error) {
	key := cache.Key(tasksScope, "detail", taskID.String())
	response, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (TaskResponse, error) {
		task, err := s.taskRepo.FindByID(ctx, taskID)
		if err != nil {
			return TaskResponse{}, err
		}
		return ToTaskResponse(task), nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves tasks with filtering and pagination
func (s *TaskService) List(ctx context.Context, filter TaskListFilter) ([]TaskListResponse, int64, error) {
	domainFilter := buildTaskFilter(filter)

	key := cache.Key(tasksScope, "list", filterKey(domainFilter))
	page, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (taskListPage, error) {
		items, err := s.taskRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return taskListPage{}, err
		}
		total, err := s.taskRepo.Count(ctx, domainFilter)
		if err != nil {
			return taskListPage{}, err
		}
		return taskListPage{Items: ToTaskListResponses(items), Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

// ListByProject retrieves the tasks of one project
func (s *TaskService) ListByProject(ctx context.Context, projectID uuid.UUID, filter TaskListFilter) ([]TaskListResponse, int64, error) {
	domainFilter := buildTaskFilter(filter)
	domainFilter.Filters["project_id"] = projectID.String()

	key := cache.Key(tasksScope, "project", projectID.String(), filterKey(domainFilter))
	page, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (taskListPage, error) {
		items, err := s.taskRepo.FindByProject(ctx, projectID, domainFilter)
		if err != nil {
			return taskListPage{}, err
		}
		total, err := s.taskRepo.Count(ctx, domainFilter)
		if err != nil {
			return taskListPage{}, err
		}
		return taskListPage{Items: ToTaskListResponses(items), Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

// Update applies a partial update to a task
func (s *TaskService) Update(ctx context.Context, taskID uuid.UUID, req UpdateTaskRequest) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	expectedVersion := task.Version

	if req.Title != nil {
		if err := task.Rename(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		task.SetDescription(req.Description)
	}
	if req.Status != nil {
		if err := task.MoveToStatus(work.TaskStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		if err := task.ChangePriority(work.Priority(*req.Priority)); err != nil {
			return nil, err
		}
	}
	if req.ProjectID != nil {
		task.AttachToProject(req.ProjectID)
	}
	if req.AssignedTo != nil {
		task.AssignTo(req.AssignedTo)
	}
	if req.DueDate != nil {
		task.SetDueDate(req.DueDate)
	}
	if req.EstimatedHours != nil || req.ActualHours != nil {
		estimated := task.EstimatedHours
		actual := task.ActualHours
		if req.EstimatedHours != nil {
			estimated = req.EstimatedHours
		}
		if req.ActualHours != nil {
			actual = req.ActualHours
		}
		if err := task.SetHours(estimated, actual); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		task.SetTags(*req.Tags)
	}

	if err := s.taskRepo.SaveWithLock(ctx, task, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, task)
	s.invalidate(ctx, tasksScope, dashboardScope)

	response := ToTaskResponse(task)
	return &response, nil
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}
	s.invalidate(ctx, tasksScope, dashboardScope)
	return nil
}

func (s *TaskService) publishEvents(ctx context.Context, task *work.Task) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, task.GetDomainEvents()...)
	task.ClearDomainEvents()
}

func (s *TaskService) invalidate(ctx context.Context, scopes ...string) {
	for _, scope := range scopes {
		s.queries.InvalidateScope(scope)
		if s.invalidator != nil {
			_ = s.invalidator.PublishScope(ctx, scope)
		}
	}
}

func buildTaskFilter(filter TaskListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Priority != "" {
		domainFilter.Filters["priority"] = filter.Priority
	}
	if filter.ProjectID != "" {
		domainFilter.Filters["project_id"] = filter.ProjectID
	}
	if filter.AssignedTo != "" {
		domainFilter.Filters["assigned_to"] = filter.AssignedTo
	}
	return domainFilter
}
