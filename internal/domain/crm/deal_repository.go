package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealListItem is the list projection of a deal including the linked
// contact's display fields. Dangling links leave them nil.
type DealListItem struct {
	Deal
	ContactName  *string
	CompanyName  *string
	AssigneeName *string
}

// PipelineStats summarizes the deal pipeline for dashboards
type PipelineStats struct {
	OpenValue decimal.Decimal
	WonCount  int64
	LostCount int64
	OpenCount int64
}

// DealRepository defines persistence operations for deals
type DealRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Deal, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]DealListItem, error)
	Save(ctx context.Context, deal *Deal) error
	SaveWithLock(ctx context.Context, deal *Deal, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	PipelineStats(ctx context.Context) (*PipelineStats, error)
}
