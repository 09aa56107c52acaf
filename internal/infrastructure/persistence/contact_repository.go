package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContactRepository implements ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// contactListRow carries the contact columns plus the assignee's display
// fields from the joined users table
type contactListRow struct {
	models.ContactModel
	AssigneeName   *string
	AssigneeAvatar *string
}

func (row *contactListRow) toListItem() crm.ContactListItem {
	return crm.ContactListItem{
		Contact:        *row.ContactModel.ToDomain(),
		AssigneeName:   row.AssigneeName,
		AssigneeAvatar: row.AssigneeAvatar,
	}
}

// FindByID finds a contact by its ID
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Contact, error) {
	var model models.ContactModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all contacts matching the filter, joined with the assignee's
// display fields. Contacts whose assignee no longer exists keep nil fields.
func (r *GormContactRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.ContactListItem, error) {
	var rows []contactListRow
	query := r.db.WithContext(ctx).Model(&models.ContactModel{}).
		Select("contacts.*, u.full_name AS assignee_name, u.avatar_url AS assignee_avatar").
		Joins("LEFT JOIN users u ON u.id = contacts.assigned_to")
	query = r.applyFilter(query, filter)

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]crm.ContactListItem, len(rows))
	for i := range rows {
		items[i] = rows[i].toListItem()
	}
	return items, nil
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	model := models.ContactModelFromDomain(contact)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a contact only if the stored version matches
// expectedVersion
func (r *GormContactRepository) SaveWithLock(ctx context.Context, contact *crm.Contact, expectedVersion int) error {
	model := models.ContactModelFromDomain(contact)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", contact.ID, expectedVersion).
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

// Delete deletes a contact
func (r *GormContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ContactModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts contacts matching the filter
func (r *GormContactRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ContactModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmail checks if a contact with the given email exists
func (r *GormContactRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContactModel{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormContactRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ContactSortFields, "created_at")
	query = query.Order("contacts." + orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormContactRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where(
			"contacts.company_name ILIKE ? OR contacts.first_name ILIKE ? OR contacts.last_name ILIKE ? OR contacts.email ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("contacts.type = ?", value)
		case "assigned_to":
			query = query.Where("contacts.assigned_to = ?", value)
		case "city":
			query = query.Where("contacts.city = ?", value)
		case "country":
			query = query.Where("contacts.country = ?", value)
		case "industry":
			query = query.Where("contacts.industry = ?", value)
		}
	}

	return query
}

// Ensure GormContactRepository implements ContactRepository
var _ crm.ContactRepository = (*GormContactRepository)(nil)
