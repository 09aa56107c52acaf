package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDealRepository implements DealRepository using GORM
type GormDealRepository struct {
	db *gorm.DB
}

// NewGormDealRepository creates a new GormDealRepository
func NewGormDealRepository(db *gorm.DB) *GormDealRepository {
	return &GormDealRepository{db: db}
}

// dealListRow carries the deal columns plus display fields from the joined
// contacts and users tables
type dealListRow struct {
	models.DealModel
	ContactName  *string
	CompanyName  *string
	AssigneeName *string
}

func (row *dealListRow) toListItem() crm.DealListItem {
	return crm.DealListItem{
		Deal:         *row.DealModel.ToDomain(),
		ContactName:  row.ContactName,
		CompanyName:  row.CompanyName,
		AssigneeName: row.AssigneeName,
	}
}

// FindByID finds a deal by its ID
func (r *GormDealRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Deal, error) {
	var model models.DealModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all deals matching the filter, joined with contact and
// assignee display fields. Dangling references keep nil fields.
func (r *GormDealRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.DealListItem, error) {
	var rows []dealListRow
	query := r.db.WithContext(ctx).Model(&models.DealModel{}).
		Select(`deals.*,
			(c.first_name || ' ' || c.last_name) AS contact_name,
			c.company_name AS company_name,
			u.full_name AS assignee_name`).
		Joins("LEFT JOIN contacts c ON c.id = deals.contact_id").
		Joins("LEFT JOIN users u ON u.id = deals.assigned_to")
	query = r.applyFilter(query, filter)

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]crm.DealListItem, len(rows))
	for i := range rows {
		items[i] = rows[i].toListItem()
	}
	return items, nil
}

// Save creates or updates a deal
func (r *GormDealRepository) Save(ctx context.Context, deal *crm.Deal) error {
	model := models.DealModelFromDomain(deal)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a deal only if the stored version matches expectedVersion
func (r *GormDealRepository) SaveWithLock(ctx context.Context, deal *crm.Deal, expectedVersion int) error {
	model := models.DealModelFromDomain(deal)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", deal.ID, expectedVersion).
		// Select("*") writes nil and zero-valued columns too
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a deal
func (r *GormDealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DealModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts deals matching the filter
func (r *GormDealRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.DealModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PipelineStats aggregates the open pipeline value and closed deal counts
func (r *GormDealRepository) PipelineStats(ctx context.Context) (*crm.PipelineStats, error) {
	var result struct {
		OpenValue decimal.Decimal
		WonCount  int64
		LostCount int64
		OpenCount int64
	}

	err := r.db.WithContext(ctx).
		Model(&models.DealModel{}).
		Select(`
			COALESCE(SUM(CASE WHEN stage NOT IN ? THEN value ELSE 0 END), 0) AS open_value,
			COUNT(CASE WHEN stage = ? THEN 1 END) AS won_count,
			COUNT(CASE WHEN stage = ? THEN 1 END) AS lost_count,
			COUNT(CASE WHEN stage NOT IN ? THEN 1 END) AS open_count
		`,
			[]crm.DealStage{crm.StageClosedWon, crm.StageClosedLost},
			crm.StageClosedWon,
			crm.StageClosedLost,
			[]crm.DealStage{crm.StageClosedWon, crm.StageClosedLost},
		).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return &crm.PipelineStats{
		OpenValue: result.OpenValue,
		WonCount:  result.WonCount,
		LostCount: result.LostCount,
		OpenCount: result.OpenCount,
	}, nil
}

// applyFilter applies filter options to the query
func (r *GormDealRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, DealSortFields, "created_at")
	query = query.Order("deals." + orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormDealRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("deals.title ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "stage":
			query = query.Where("deals.stage = ?", value)
		case "contact_id":
			query = query.Where("deals.contact_id = ?", value)
		case "assigned_to":
			query = query.Where("deals.assigned_to = ?", value)
		case "source":
			query = query.Where("deals.source = ?", value)
		case "open":
			closed := []crm.DealStage{crm.StageClosedWon, crm.StageClosedLost}
			if value == true {
				query = query.Where("deals.stage NOT IN ?", closed)
			} else {
				query = query.Where("deals.stage IN ?", closed)
			}
		}
	}

	return query
}

// Ensure GormDealRepository implements DealRepository
var _ crm.DealRepository = (*GormDealRepository)(nil)
