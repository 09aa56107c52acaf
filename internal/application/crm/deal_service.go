package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dealListPage bundles a list page with its total for caching
type dealListPage struct {
	Items []DealListResponse
	Total int64
}

// DealService handles deal-related business operations
type DealService struct {
	dealRepo    crm.DealRepository
	queries     cache.QueryCache
	invalidator cache.Invalidator
	events      shared.EventPublisher
}

// NewDealService creates a new DealService
func NewDealService(
	dealRepo crm.DealRepository,
	queries cache.QueryCache,
	invalidator cache.Invalidator,
	events shared.EventPublisher,
) *DealService {
	return &DealService{
		dealRepo:    dealRepo,
		queries:     queries,
		invalidator: invalidator,
		events:      events,
	}
}

// Create creates a new deal in the lead stage
func (s *DealService) Create(ctx context.Context, req CreateDealRequest) (*DealResponse, error) {
	value := decimal.Zero
	if req.Value != nil {
		value = *req.Value
	}
	probability := 0
	if req.Probability != nil {
		probability = *req.Probability
	}

	deal, err := crm.NewDeal(req.Title, value, probability)
	if err != nil {
		return nil, err
	}

	deal.SetDescription(optional(req.Description))
	deal.SetContact(req.ContactID)
	deal.AssignTo(req.AssignedTo)
	deal.SetExpectedCloseDate(req.ExpectedCloseDate)
	deal.SetSource(optional(req.Source))
	deal.SetNotes(optional(req.Notes))

	if err := s.dealRepo.Save(ctx, deal); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, deal)
	s.invalidate(ctx, dealsScope, dashboardScope)

	response := ToDealResponse(deal)
	return &response, nil
}

// GetByID retrieves a deal by ID
func (s *DealService) GetByID(ctx context.Context, dealID uuid.UUID) (*DealResponse, error) {
	key := cache.Key(dealsScope, "detail", dealID.String())
	response, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (DealResponse, error) {
		deal, err := s.dealRepo.FindByID(ctx, dealID)
		if err != nil {
			return DealResponse{}, err
		}
		return ToDealResponse(deal), nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves deals with filtering and pagination
func (s *DealService) List(ctx context.Context, filter DealListFilter) ([]DealListResponse, int64, error) {
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
	if filter.Stage != "" {
		domainFilter.Filters["stage"] = filter.Stage
	}
	if filter.ContactID != "" {
		domainFilter.Filters["contact_id"] = filter.ContactID
	}
	if filter.AssignedTo != "" {
		domainFilter.Filters["assigned_to"] = filter.AssignedTo
	}
	if filter.Source != "" {
		domainFilter.Filters["source"] = filter.Source
	}
	if filter.Open != nil {
		domainFilter.Filters["open"] = *filter.Open
	}

	key := cache.Key(dealsScope, "list", filterKey(domainFilter))
	page, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (dealListPage, error) {
		items, err := s.dealRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return dealListPage{}, err
		}
		total, err := s.dealRepo.Count(ctx, domainFilter)
		if err != nil {
			return dealListPage{}, err
		}
		return dealListPage{Items: ToDealListResponses(items), Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

// Update applies a partial update to a deal
func (s *DealService) Update(ctx context.Context, dealID uuid.UUID, req UpdateDealRequest) (*DealResponse, error) {
	deal, err := s.dealRepo.FindByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	expectedVersion := deal.Version

	if req.Title != nil {
		if err := deal.Rename(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		deal.SetDescription(req.Description)
	}
	if req.Value != nil {
		if err := deal.ChangeValue(*req.Value); err != nil {
			return nil, err
		}
	}
	if req.Probability != nil {
		if err := deal.ChangeProbability(*req.Probability); err != nil {
			return nil, err
		}
	}
	if req.Stage != nil {
		if err := deal.MoveToStage(crm.DealStage(*req.Stage)); err != nil {
			return nil, err
		}
	}
	if req.ContactID != nil {
		deal.SetContact(req.ContactID)
	}
	if req.AssignedTo != nil {
		deal.AssignTo(req.AssignedTo)
	}
	if req.ExpectedCloseDate != nil {
		deal.SetExpectedCloseDate(req.ExpectedCloseDate)
	}
	if req.Source != nil {
		deal.SetSource(req.Source)
	}
	if req.Notes != nil {
		deal.SetNotes(req.Notes)
	}

	if err := s.dealRepo.SaveWithLock(ctx, deal, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, deal)
	s.invalidate(ctx, dealsScope, dashboardScope)

	response := ToDealResponse(deal)
	return &response, nil
}

// MoveStage moves a deal to another pipeline stage. Moving to the current
// stage is a no-op that skips the write entirely.
func (s *DealService) MoveStage(ctx context.Context, dealID uuid.UUID, req MoveDealStageRequest) (*DealResponse, error) {
	deal, err := s.dealRepo.FindByID(ctx, dealID)
	if err != nil {
		return nil, err
	}

	stage := crm.DealStage(req.Stage)
	if deal.Stage == stage {
		response := ToDealResponse(deal)
		return &response, nil
	}

	expectedVersion := deal.Version
	if err := deal.MoveToStage(stage); err != nil {
		return nil, err
	}

	if err := s.dealRepo.SaveWithLock(ctx, deal, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, deal)
	s.invalidate(ctx, dealsScope, dashboardScope)

	response := ToDealResponse(deal)
	return &response, nil
}

// Delete removes a deal
func (s *DealService) Delete(ctx context.Context, dealID uuid.UUID) error {
	if err := s.dealRepo.Delete(ctx, dealID); err != nil {
		return err
	}
	s.invalidate(ctx, dealsScope, dashboardScope)
	return nil
}

// PipelineStats summarizes the pipeline for dashboards
func (s *DealService) PipelineStats(ctx context.Context) (*PipelineStatsResponse, error) {
	key := cache.Key(dashboardScope, "pipeline")
	response, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (PipelineStatsResponse, error) {
		stats, err := s.dealRepo.PipelineStats(ctx)
		if err != nil {
			return PipelineStatsResponse{}, err
		}
		return PipelineStatsResponse{
			OpenValue: stats.OpenValue,
			WonCount:  stats.WonCount,
			LostCount: stats.LostCount,
			OpenCount: stats.OpenCount,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (s *DealService) publishEvents(ctx context.Context, deal *crm.Deal) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, deal.GetDomainEvents()...)
	deal.ClearDomainEvents()
}

func (s *DealService) invalidate(ctx context.Context, scopes ...string) {
	for _, scope := range scopes {
		s.queries.InvalidateScope(scope)
		if s.invalidator != nil {
			_ = s.invalidator.PublishScope(ctx, scope)
		}
	}
}
