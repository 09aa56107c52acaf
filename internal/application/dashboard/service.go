package dashboard

import (
	"context"
	"fmt"

	workapp "github.com/crm/backend/internal/application/work"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
)

const dashboardScope = "dashboard"

const recentActivityLimit = 10

// StatsResponse is the aggregated dashboard payload
type StatsResponse struct {
	Contacts     int64                      `json:"contacts"`
	Deals        int64                      `json:"deals"`
	Projects     int64                      `json:"projects"`
	Tasks        int64                      `json:"tasks"`
	OpenValue    decimal.Decimal            `json:"open_value"`
	OpenDeals    int64                      `json:"open_deals"`
	WonDeals     int64                      `json:"won_deals"`
	LostDeals    int64                      `json:"lost_deals"`
	WinRate      float64                    `json:"win_rate"`
	TasksByState map[string]int64           `json:"tasks_by_status"`
	Recent       []workapp.ActivityListResponse `json:"recent_activities"`
}

// Service aggregates the dashboard view. It is read-only; the writing
// services drop the dashboard cache scope on every mutation.
type Service struct {
	contactRepo  crm.ContactRepository
	dealRepo     crm.DealRepository
	projectRepo  work.ProjectRepository
	taskRepo     work.TaskRepository
	activityRepo work.ActivityRepository
	queries      cache.QueryCache
}

// NewService creates a new dashboard Service
func NewService(
	contactRepo crm.ContactRepository,
	dealRepo crm.DealRepository,
	projectRepo work.ProjectRepository,
	taskRepo work.TaskRepository,
	activityRepo work.ActivityRepository,
	queries cache.QueryCache,
) *Service {
	return &Service{
		contactRepo:  contactRepo,
		dealRepo:     dealRepo,
		projectRepo:  projectRepo,
		taskRepo:     taskRepo,
		activityRepo: activityRepo,
		queries:      queries,
	}
}

// Stats computes the aggregated dashboard payload
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	key := cache.Key(dashboardScope, "stats")
	response, err := cache.GetTyped(ctx, s.queries, key, s.loadStats)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (s *Service) loadStats(ctx context.Context) (StatsResponse, error) {
	countFilter := shared.DefaultFilter()

	contacts, err := s.contactRepo.Count(ctx, countFilter)
	if err != nil {
		return StatsResponse{}, fmt.Errorf("count contacts: %w", err)
	}
	deals, err := s.dealRepo.Count(ctx, countFilter)
	if err != nil {
		return StatsResponse{}, fmt.Errorf("count deals: %w", err)
	}
	projects, err := s.projectRepo.Count(ctx, countFilter)
	if err != nil {
		return StatsResponse{}, fmt.Errorf("count projects: %w", err)
	}
	tasks, err := s.taskRepo.Count(ctx, countFilter)
	if err != nil {
		return StatsResponse{}, fmt.Errorf("count tasks: %w", err)
	}

	pipeline, err := s.dealRepo.PipelineStats(ctx)
	if err != nil {
		return StatsResponse{}, fmt.Errorf("pipeline stats: %w", err)
	}

	byStatus, err := s.taskRepo.CountByStatus(ctx)
	if err != nil {
		return StatsResponse{}, fmt.Errorf("tasks by status: %w", err)
	}
	tasksByState := make(map[string]int64, len(byStatus))
	for status, count := range byStatus {
		tasksByState[string(status)] = count
	}

	recentFilter := shared.DefaultFilter()
	recentFilter.PageSize = recentActivityLimit
	recent, err := s.activityRepo.FindAll(ctx, recentFilter)
	if err != nil {
		return StatsResponse{}, fmt.Errorf("recent activities: %w", err)
	}

	return StatsResponse{
		Contacts:     contacts,
		Deals:        deals,
		Projects:     projects,
		Tasks:        tasks,
		OpenValue:    pipeline.OpenValue,
		OpenDeals:    pipeline.OpenCount,
		WonDeals:     pipeline.WonCount,
		LostDeals:    pipeline.LostCount,
		WinRate:      winRate(pipeline),
		TasksByState: tasksByState,
		Recent:       workapp.ToActivityListResponses(recent),
	}, nil
}

// winRate is won / (won + lost); zero closed deals yields zero.
func winRate(stats *crm.PipelineStats) float64 {
	closed := stats.WonCount + stats.LostCount
	if closed == 0 {
		return 0
	}
	return float64(stats.WonCount) / float64(closed)
}
