package work

import (
	"context"
	"fmt"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
)

// Cache scopes touched by the work services
const (
	projectsScope   = "projects"
	tasksScope      = "tasks"
	activitiesScope = "activities"
	dashboardScope  = "dashboard"
)

// projectListPage bundles a list page with its total for caching
type projectListPage struct {
	Items []ProjectListResponse
	Total int64
}

// ProjectService handles project-related business operations
type ProjectService struct {
	projectRepo work.ProjectRepository
	queries     cache.QueryCache
	invalidator cache.Invalidator
	events      shared.EventPublisher
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo work.ProjectRepository,
	queries cache.QueryCache,
	invalidator cache.Invalidator,
	events shared.EventPublisher,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		queries:     queries,
		invalidator: invalidator,
		events:      events,
	}
}

// Create creates a new project in the planning state
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	priority := work.PriorityMedium
	if req.Priority != "" {
		priority = work.Priority(req.Priority)
	}

	project, err := work.NewProject(req.Name, priority)
	if err != nil {
		return nil, err
	}

	project.SetDescription(optional(req.Description))
	if req.StartDate != nil || req.DueDate != nil {
		if err := project.SetSchedule(req.StartDate, req.DueDate); err != nil {
			return nil, err
		}
	}
	if req.Budget != nil {
		if err := project.SetBudget(req.Budget); err != nil {
			return nil, err
		}
	}
	project.SetClient(req.ClientID)
	project.SetManager(req.ManagerID)

	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, project)
	s.invalidate(ctx, projectsScope, tasksScope, dashboardScope)

	response := ToProjectResponse(project)
	return &response, nil
}

// GetByID retrieves a project by ID
func (s *ProjectService) GetByID(ctx context.Context, projectID uuid.UUID) (*ProjectResponse, error) {
	key := cache.Key(projectsScope, "detail", projectID.String())
	response, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (ProjectResponse, error) {
		project, err := s.projectRepo.FindByID(ctx, projectID)
		if err != nil {
			return ProjectResponse{}, err
		}
		return ToProjectResponse(project), nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves projects with filtering and pagination
func (s *ProjectService) List(ctx context.Context, filter ProjectListFilter) ([]ProjectListResponse, int64, error) {
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
	if filter.ClientID != "" {
		domainFilter.Filters["client_id"] = filter.ClientID
	}
	if filter.ManagerID != "" {
		domainFilter.Filters["manager_id"] = filter.ManagerID
	}

	key := cache.Key(projectsScope, "list", filterKey(domainFilter))
	page, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (projectListPage, error) {
		items, err := s.projectRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return projectListPage{}, err
		}
		total, err := s.projectRepo.Count(ctx, domainFilter)
		if err != nil {
			return projectListPage{}, err
		}
		return projectListPage{Items: ToProjectListResponses(items), Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

// Update applies a partial update to a project
func (s *ProjectService) Update(ctx context.Context, projectID uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	expectedVersion := project.Version

	if req.Name != nil {
		if err := project.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		project.SetDescription(req.Description)
	}
	if req.Status != nil {
		if err := project.ChangeStatus(work.ProjectStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		if err := project.ChangePriority(work.Priority(*req.Priority)); err != nil {
			return nil, err
		}
	}
	if req.StartDate != nil || req.DueDate != nil {
		startDate := project.StartDate
		dueDate := project.DueDate
		if req.StartDate != nil {
			startDate = req.StartDate
		}
		if req.DueDate != nil {
			dueDate = req.DueDate
		}
		if err := project.SetSchedule(startDate, dueDate); err != nil {
			return nil, err
		}
	}
	if req.Budget != nil {
		if err := project.SetBudget(req.Budget); err != nil {
			return nil, err
		}
	}
	if req.ClientID != nil {
		project.SetClient(req.ClientID)
	}
	if req.ManagerID != nil {
		project.SetManager(req.ManagerID)
	}
	if req.Progress != nil {
		if err := project.SetProgress(*req.Progress); err != nil {
			return nil, err
		}
	}

	if err := s.projectRepo.SaveWithLock(ctx, project, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, project)
	s.invalidate(ctx, projectsScope, tasksScope, dashboardScope)

	response := ToProjectResponse(project)
	return &response, nil
}

// Delete removes a project
func (s *ProjectService) Delete(ctx context.Context, projectID uuid.UUID) error {
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return err
	}
	s.invalidate(ctx, projectsScope, tasksScope, dashboardScope)
	return nil
}

func (s *ProjectService) publishEvents(ctx context.Context, project *work.Project) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, project.GetDomainEvents()...)
	project.ClearDomainEvents()
}

func (s *ProjectService) invalidate(ctx context.Context, scopes ...string) {
	for _, scope := range scopes {
		s.queries.InvalidateScope(scope)
		if s.invalidator != nil {
			_ = s.invalidator.PublishScope(ctx, scope)
		}
	}
}

// optional maps empty strings from create requests to nil pointers
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// filterKey renders a filter into a deterministic cache key segment
func filterKey(f shared.Filter) string {
	return fmt.Sprintf("p=%d:ps=%d:ob=%s:od=%s:q=%s:f=%v",
		f.Page, f.PageSize, f.OrderBy, f.OrderDir, f.Search, f.Filters)
}
