package work

import (
	"context"
	"fmt"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
)

// activityListPage bundles a feed page with its total for caching
type activityListPage struct {
	Items []ActivityListResponse
	Total int64
}

// ActivityService serves and appends to the activity feed
type ActivityService struct {
	activityRepo work.ActivityRepository
	queries      cache.QueryCache
	invalidator  cache.Invalidator
}

// NewActivityService creates a new ActivityService
func NewActivityService(
	activityRepo work.ActivityRepository,
	queries cache.QueryCache,
	invalidator cache.Invalidator,
) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		queries:      queries,
		invalidator:  invalidator,
	}
}

// Record appends a feed entry
func (s *ActivityService) Record(ctx context.Context, req RecordActivityRequest) (*ActivityResponse, error) {
	activity, err := work.NewActivity(work.ActivityType(req.Type), req.Title, req.EntityType, req.EntityID)
	if err != nil {
		return nil, err
	}
	activity.WithContent(optional(req.Content)).
		WithUser(req.UserID).
		WithMetadata(req.Metadata)

	if err := s.activityRepo.Save(ctx, activity); err != nil {
		return nil, err
	}

	s.invalidate(ctx, activitiesScope, dashboardScope)

	response := ToActivityResponse(activity)
	return &response, nil
}

// List retrieves feed entries with filtering and pagination
func (s *ActivityService) List(ctx context.Context, filter ActivityListFilter) ([]ActivityListResponse, int64, error) {
	domainFilter := buildActivityFilter(filter)

	key := cache.Key(activitiesScope, "list", filterKey(domainFilter))
	page, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (activityListPage, error) {
		items, err := s.activityRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return activityListPage{}, err
		}
		total, err := s.activityRepo.Count(ctx, domainFilter)
		if err != nil {
			return activityListPage{}, err
		}
		return activityListPage{Items: ToActivityListResponses(items), Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

// ListByEntity retrieves the feed of one entity
func (s *ActivityService) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter ActivityListFilter) ([]ActivityListResponse, int64, error) {
	domainFilter := buildActivityFilter(filter)
	domainFilter.Filters["entity_type"] = entityType
	domainFilter.Filters["entity_id"] = entityID.String()

	key := cache.Key(activitiesScope, "entity", entityType, entityID.String(), filterKey(domainFilter))
	page, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (activityListPage, error) {
		items, err := s.activityRepo.FindByEntity(ctx, entityType, entityID, domainFilter)
		if err != nil {
			return activityListPage{}, err
		}
		total, err := s.activityRepo.Count(ctx, domainFilter)
		if err != nil {
			return activityListPage{}, err
		}
		return activityListPage{Items: ToActivityListResponses(items), Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

func (s *ActivityService) invalidate(ctx context.Context, scopes ...string) {
	for _, scope := range scopes {
		s.queries.InvalidateScope(scope)
		if s.invalidator != nil {
			_ = s.invalidator.PublishScope(ctx, scope)
		}
	}
}

func buildActivityFilter(filter ActivityListFilter) shared.Filter {
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
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.EntityType != "" {
		domainFilter.Filters["entity_type"] = filter.EntityType
	}
	if filter.UserID != "" {
		domainFilter.Filters["user_id"] = filter.UserID
	}
	return domainFilter
}

// =============================================================================
// Event-driven feed recorder
// =============================================================================

// ActivityRecorder subscribes to domain events and appends feed entries for
// the ones worth surfacing in the timeline.
type ActivityRecorder struct {
	service *ActivityService
}

// NewActivityRecorder creates an ActivityRecorder
func NewActivityRecorder(service *ActivityService) *ActivityRecorder {
	return &ActivityRecorder{service: service}
}

// EventTypes returns the event types the recorder listens for
func (r *ActivityRecorder) EventTypes() []string {
	return []string{
		crm.EventContactCreated,
		crm.EventDealCreated,
		crm.EventDealStageChanged,
		work.EventProjectCreated,
		work.EventProjectStatusChanged,
		work.EventTaskCreated,
		work.EventTaskStatusChanged,
	}
}

// Handle appends a feed entry for a domain event
func (r *ActivityRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	req, ok := r.requestFor(event)
	if !ok {
		return nil
	}
	_, err := r.service.Record(ctx, req)
	return err
}

func (r *ActivityRecorder) requestFor(event shared.DomainEvent) (RecordActivityRequest, bool) {
	switch e := event.(type) {
	case *crm.ContactCreatedEvent:
		return RecordActivityRequest{
			Type:       string(work.ActivityNote),
			Title:      fmt.Sprintf("Contact %s at %s was created", e.FullName, e.CompanyName),
			EntityType: "contact",
			EntityID:   e.AggregateID(),
		}, true
	case *crm.DealCreatedEvent:
		return RecordActivityRequest{
			Type:       string(work.ActivityDealUpdate),
			Title:      fmt.Sprintf("Deal %q entered the pipeline", e.Title),
			EntityType: "deal",
			EntityID:   e.AggregateID(),
		}, true
	case *crm.DealStageChangedEvent:
		return RecordActivityRequest{
			Type:       string(work.ActivityDealUpdate),
			Title:      fmt.Sprintf("Deal %q moved from %s to %s", e.Title, e.PreviousStage, e.NewStage),
			EntityType: "deal",
			EntityID:   e.AggregateID(),
			Metadata: map[string]any{
				"previous_stage": string(e.PreviousStage),
				"new_stage":      string(e.NewStage),
			},
		}, true
	case *work.ProjectCreatedEvent:
		return RecordActivityRequest{
			Type:       string(work.ActivityProjectUpdate),
			Title:      fmt.Sprintf("Project %q was created", e.Name),
			EntityType: "project",
			EntityID:   e.AggregateID(),
		}, true
	case *work.ProjectStatusChangedEvent:
		return RecordActivityRequest{
			Type:       string(work.ActivityProjectUpdate),
			Title:      fmt.Sprintf("Project %q moved from %s to %s", e.Name, e.PreviousStatus, e.NewStatus),
			EntityType: "project",
			EntityID:   e.AggregateID(),
			Metadata: map[string]any{
				"previous_status": string(e.PreviousStatus),
				"new_status":      string(e.NewStatus),
			},
		}, true
	case *work.TaskCreatedEvent:
		return RecordActivityRequest{
			Type:       string(work.ActivityTask),
			Title:      fmt.Sprintf("Task %q was created", e.Title),
			EntityType: "task",
			EntityID:   e.AggregateID(),
		}, true
	case *work.TaskStatusChangedEvent:
		return RecordActivityRequest{
			Type:       string(work.ActivityTask),
			Title:      fmt.Sprintf("Task %q moved from %s to %s", e.Title, e.PreviousStatus, e.NewStatus),
			EntityType: "task",
			EntityID:   e.AggregateID(),
			Metadata: map[string]any{
				"previous_status": string(e.PreviousStatus),
				"new_status":      string(e.NewStatus),
			},
		}, true
	default:
		return RecordActivityRequest{}, false
	}
}

// Ensure ActivityRecorder implements EventHandler
var _ shared.EventHandler = (*ActivityRecorder)(nil)
