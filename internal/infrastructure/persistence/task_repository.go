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

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// taskListRow carries the task columns plus display fields from the joined
// projects and users tables
type taskListRow struct {
	models.TaskModel
	ProjectName    *string
	AssigneeName   *string
	AssigneeAvatar *string
}

func (row *taskListRow) toListItem() work.TaskListItem {
	return work.TaskListItem{
		Task:           *row.TaskModel.ToDomain(),
		ProjectName:    row.ProjectName,
		AssigneeName:   row.AssigneeName,
		AssigneeAvatar: row.AssigneeAvatar,
	}
}

// FindByID finds a task by its ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*work.Task, error) {
	var model models.TaskModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all tasks matching the filter, joined with the project name
// and assignee display fields. Dangling references keep nil fields.
func (r *GormTaskRepository) FindAll(ctx context.Context, filter shared.Filter) ([]work.TaskListItem, error) {
	query := r.listQuery(ctx)
	query = r.applyFilter(query, filter)
	return r.scanListItems(query)
}

// FindByProject finds tasks belonging to a project
func (r *GormTaskRepository) FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]work.TaskListItem, error) {
	query := r.listQuery(ctx).Where("tasks.project_id = ?", projectID)
	query = r.applyFilter(query, filter)
	return r.scanListItems(query)
}

func (r *GormTaskRepository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.TaskModel{}).
		Select("tasks.*, p.name AS project_name, u.full_name AS assignee_name, u.avatar_url AS assignee_avatar").
		Joins("LEFT JOIN projects p ON p.id = tasks.project_id").
		Joins("LEFT JOIN users u ON u.id = tasks.assigned_to")
}

func (r *GormTaskRepository) scanListItems(query *gorm.DB) ([]work.TaskListItem, error) {
	var rows []taskListRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]work.TaskListItem, len(rows))
	for i := range rows {
		items[i] = rows[i].toListItem()
	}
	return items, nil
}

// Save creates or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, task *work.Task) error {
	model := models.TaskModelFromDomain(task)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a task only if the stored version matches expectedVersion
func (r *GormTaskRepository) SaveWithLock(ctx context.Context, task *work.Task, expectedVersion int) error {
	model := models.TaskModelFromDomain(task)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", task.ID, expectedVersion).
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

// Delete deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TaskModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts tasks matching the filter
func (r *GormTaskRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.TaskModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts tasks per board column. Columns with no tasks are
// present with a zero count.
func (r *GormTaskRepository) CountByStatus(ctx context.Context) (map[work.TaskStatus]int64, error) {
	var rows []struct {
		Status work.TaskStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[work.TaskStatus]int64{
		work.TaskTodo:       0,
		work.TaskInProgress: 0,
		work.TaskReview:     0,
		work.TaskDone:       0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// applyFilter applies filter options to the query
func (r *GormTaskRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TaskSortFields, "created_at")
	query = query.Order("tasks." + orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTaskRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("tasks.title ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("tasks.status = ?", value)
		case "priority":
			query = query.Where("tasks.priority = ?", value)
		case "project_id":
			query = query.Where("tasks.project_id = ?", value)
		case "assigned_to":
			query = query.Where("tasks.assigned_to = ?", value)
		case "created_by":
			query = query.Where("tasks.created_by = ?", value)
		}
	}

	return query
}

// Ensure GormTaskRepository implements TaskRepository
var _ work.TaskRepository = (*GormTaskRepository)(nil)
