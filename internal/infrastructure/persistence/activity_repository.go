package persistence

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormActivityRepository implements ActivityRepository using GORM.
// The feed is append-only so there is no update path.
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// activityListRow carries the activity columns plus the acting user's
// display fields from the joined users table
type activityListRow struct {
	models.ActivityModel
	UserName   *string
	UserAvatar *string
}

func (row *activityListRow) toListItem() work.ActivityListItem {
	return work.ActivityListItem{
		Activity:   *row.ActivityModel.ToDomain(),
		UserName:   row.UserName,
		UserAvatar: row.UserAvatar,
	}
}

// FindAll finds feed entries matching the filter, joined with the acting
// user's display fields. Entries whose user no longer exists keep nil fields.
func (r *GormActivityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]work.ActivityListItem, error) {
	query := r.listQuery(ctx)
	query = r.applyFilter(query, filter)
	return r.scanListItems(query)
}

// FindByEntity finds feed entries that reference one entity
func (r *GormActivityRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter shared.Filter) ([]work.ActivityListItem, error) {
	query := r.listQuery(ctx).
		Where("activities.entity_type = ? AND activities.entity_id = ?", entityType, entityID)
	query = r.applyFilter(query, filter)
	return r.scanListItems(query)
}

func (r *GormActivityRepository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ActivityModel{}).
		Select("activities.*, u.full_name AS user_name, u.avatar_url AS user_avatar").
		Joins("LEFT JOIN users u ON u.id = activities.user_id")
}

func (r *GormActivityRepository) scanListItems(query *gorm.DB) ([]work.ActivityListItem, error) {
	var rows []activityListRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]work.ActivityListItem, len(rows))
	for i := range rows {
		items[i] = rows[i].toListItem()
	}
	return items, nil
}

// Save appends a feed entry
func (r *GormActivityRepository) Save(ctx context.Context, activity *work.Activity) error {
	model := models.ActivityModelFromDomain(activity)
	return r.db.WithContext(ctx).Create(model).Error
}

// Count counts feed entries matching the filter
func (r *GormActivityRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ActivityModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormActivityRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ActivitySortFields, "created_at")
	query = query.Order("activities." + orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormActivityRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("activities.title ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("activities.type = ?", value)
		case "entity_type":
			query = query.Where("activities.entity_type = ?", value)
		case "entity_id":
			query = query.Where("activities.entity_id = ?", value)
		case "user_id":
			query = query.Where("activities.user_id = ?", value)
		}
	}

	return query
}

// Ensure GormActivityRepository implements ActivityRepository
var _ work.ActivityRepository = (*GormActivityRepository)(nil)
