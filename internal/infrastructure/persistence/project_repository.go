package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// projectListRow carries the project columns plus display fields from the
// joined contacts and users tables
type projectListRow struct {
	models.ProjectModel
	ClientCompany *string
	ManagerName   *string
}

func (row *projectListRow) toListItem() work.ProjectListItem {
	return work.ProjectListItem{
		Project:       *row.ProjectModel.ToDomain(),
		ClientCompany: row.ClientCompany,
		ManagerName:   row.ManagerName,
	}
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*work.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all projects matching the filter, joined with the client
// company and manager display names. Dangling references keep nil fields.
func (r *GormProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]work.ProjectListItem, error) {
	var rows []projectListRow
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Select("projects.*, c.company_name AS client_company, u.full_name AS manager_name").
		Joins("LEFT JOIN contacts c ON c.id = projects.client_id").
		Joins("LEFT JOIN users u ON u.id = projects.manager_id")
	query = r.applyFilter(query, filter)

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]work.ProjectListItem, len(rows))
	for i := range rows {
		items[i] = rows[i].toListItem()
	}
	return items, nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, project *work.Project) error {
	model := models.ProjectModelFromDomain(project)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a project only if the stored version matches
// expectedVersion
func (r *GormProjectRepository) SaveWithLock(ctx context.Context, project *work.Project, expectedVersion int) error {
	model := models.ProjectModelFromDomain(project)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", project.ID, expectedVersion).
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

// Delete deletes a project
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts projects matching the filter
func (r *GormProjectRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ProjectModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormProjectRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProjectSortFields, "created_at")
	query = query.Order("projects." + orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormProjectRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("projects.name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("projects.status = ?", value)
		case "priority":
			query = query.Where("projects.priority = ?", value)
		case "client_id":
			query = query.Where("projects.client_id = ?", value)
		case "manager_id":
			query = query.Where("projects.manager_id = ?", value)
		}
	}

	return query
}

// Ensure GormProjectRepository implements ProjectRepository
var _ work.ProjectRepository = (*GormProjectRepository)(nil)
