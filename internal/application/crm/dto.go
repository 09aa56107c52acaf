package crm

import (
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Contact DTOs
// =============================================================================

// CreateContactRequest represents a request to create a new contact
type CreateContactRequest struct {
	Type        string     `json:"type" binding:"required,oneof=prospect client partner"`
	CompanyName string     `json:"company_name" binding:"required,min=1,max=200"`
	FirstName   string     `json:"first_name" binding:"required,min=1,max=100"`
	LastName    string     `json:"last_name" binding:"required,min=1,max=100"`
	Email       string     `json:"email" binding:"required,email,max=200"`
	Phone       string     `json:"phone" binding:"max=50"`
	Position    string     `json:"position" binding:"max=100"`
	Industry    string     `json:"industry" binding:"max=100"`
	Address     string     `json:"address" binding:"max=500"`
	City        string     `json:"city" binding:"max=100"`
	Country     string     `json:"country" binding:"max=100"`
	Website     string     `json:"website" binding:"max=200"`
	Notes       string     `json:"notes"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
}

// UpdateContactRequest represents a partial update of a contact.
// Nil fields are left untouched; empty strings clear optional fields.
type UpdateContactRequest struct {
	Type        *string    `json:"type" binding:"omitempty,oneof=prospect client partner"`
	CompanyName *string    `json:"company_name" binding:"omitempty,min=1,max=200"`
	FirstName   *string    `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName    *string    `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email       *string    `json:"email" binding:"omitempty,email,max=200"`
	Phone       *string    `json:"phone" binding:"omitempty,max=50"`
	Position    *string    `json:"position" binding:"omitempty,max=100"`
	Industry    *string    `json:"industry" binding:"omitempty,max=100"`
	Address     *string    `json:"address" binding:"omitempty,max=500"`
	City        *string    `json:"city" binding:"omitempty,max=100"`
	Country     *string    `json:"country" binding:"omitempty,max=100"`
	Website     *string    `json:"website" binding:"omitempty,max=200"`
	Notes       *string    `json:"notes"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	CompanyName string     `json:"company_name"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone"`
	Position    *string    `json:"position"`
	Industry    *string    `json:"industry"`
	Address     *string    `json:"address"`
	City        *string    `json:"city"`
	Country     *string    `json:"country"`
	Website     *string    `json:"website"`
	Notes       *string    `json:"notes"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// ContactListResponse represents a list item for contacts
type ContactListResponse struct {
	ContactResponse
	AssigneeName   *string `json:"assignee_name"`
	AssigneeAvatar *string `json:"assignee_avatar"`
}

// ContactListFilter represents filter options for the contact list
type ContactListFilter struct {
	Search     string `form:"search"`
	Type       string `form:"type" binding:"omitempty,oneof=prospect client partner"`
	AssignedTo string `form:"assigned_to" binding:"omitempty,uuid"`
	City       string `form:"city"`
	Country    string `form:"country"`
	Industry   string `form:"industry"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToContactResponse converts a domain Contact to ContactResponse
func ToContactResponse(c *crm.Contact) ContactResponse {
	return ContactResponse{
		ID:          c.ID,
		Type:        string(c.Type),
		CompanyName: c.CompanyName,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		FullName:    c.FullName(),
		Email:       c.Email,
		Phone:       c.Phone,
		Position:    c.Position,
		Industry:    c.Industry,
		Address:     c.Address,
		City:        c.City,
		Country:     c.Country,
		Website:     c.Website,
		Notes:       c.Notes,
		AssignedTo:  c.AssignedTo,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Version:     c.Version,
	}
}

// ToContactListResponses converts contact list items to responses
func ToContactListResponses(items []crm.ContactListItem) []ContactListResponse {
	responses := make([]ContactListResponse, len(items))
	for i := range items {
		responses[i] = ContactListResponse{
			ContactResponse: ToContactResponse(&items[i].Contact),
			AssigneeName:    items[i].AssigneeName,
			AssigneeAvatar:  items[i].AssigneeAvatar,
		}
	}
	return responses
}

// =============================================================================
// Deal DTOs
// =============================================================================

// CreateDealRequest represents a request to create a new deal
type CreateDealRequest struct {
	Title             string           `json:"title" binding:"required,min=1,max=200"`
	Description       string           `json:"description"`
	Value             *decimal.Decimal `json:"value"`
	Probability       *int             `json:"probability" binding:"omitempty,min=0,max=100"`
	ContactID         *uuid.UUID       `json:"contact_id"`
	AssignedTo        *uuid.UUID       `json:"assigned_to"`
	ExpectedCloseDate *time.Time       `json:"expected_close_date"`
	Source            string           `json:"source" binding:"max=100"`
	Notes             string           `json:"notes"`
}

// UpdateDealRequest represents a partial update of a deal
type UpdateDealRequest struct {
	Title             *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Description       *string          `json:"description"`
	Value             *decimal.Decimal `json:"value"`
	Stage             *string          `json:"stage" binding:"omitempty,oneof=lead qualified proposal negotiation closed_won closed_lost"`
	Probability       *int             `json:"probability" binding:"omitempty,min=0,max=100"`
	ContactID         *uuid.UUID       `json:"contact_id"`
	AssignedTo        *uuid.UUID       `json:"assigned_to"`
	ExpectedCloseDate *time.Time       `json:"expected_close_date"`
	Source            *string          `json:"source" binding:"omitempty,max=100"`
	Notes             *string          `json:"notes"`
}

// MoveDealStageRequest represents a request to move a deal between stages
type MoveDealStageRequest struct {
	Stage string `json:"stage" binding:"required,oneof=lead qualified proposal negotiation closed_won closed_lost"`
}

// DealResponse represents a deal in API responses
type DealResponse struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	Description       *string         `json:"description"`
	Value             decimal.Decimal `json:"value"`
	WeightedValue     decimal.Decimal `json:"weighted_value"`
	Stage             string          `json:"stage"`
	Probability       int             `json:"probability"`
	ContactID         *uuid.UUID      `json:"contact_id"`
	AssignedTo        *uuid.UUID      `json:"assigned_to"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date"`
	ActualCloseDate   *time.Time      `json:"actual_close_date"`
	Source            *string         `json:"source"`
	Notes             *string         `json:"notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// DealListResponse represents a list item for deals
type DealListResponse struct {
	DealResponse
	ContactName  *string `json:"contact_name"`
	CompanyName  *string `json:"company_name"`
	AssigneeName *string `json:"assignee_name"`
}

// DealListFilter represents filter options for the deal list
type DealListFilter struct {
	Search     string `form:"search"`
	Stage      string `form:"stage" binding:"omitempty,oneof=lead qualified proposal negotiation closed_won closed_lost"`
	ContactID  string `form:"contact_id" binding:"omitempty,uuid"`
	AssignedTo string `form:"assigned_to" binding:"omitempty,uuid"`
	Source     string `form:"source"`
	Open       *bool  `form:"open"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PipelineStatsResponse summarizes the deal pipeline
type PipelineStatsResponse struct {
	OpenValue decimal.Decimal `json:"open_value"`
	WonCount  int64           `json:"won_count"`
	LostCount int64           `json:"lost_count"`
	OpenCount int64           `json:"open_count"`
}

// ToDealResponse converts a domain Deal to DealResponse
func ToDealResponse(d *crm.Deal) DealResponse {
	return DealResponse{
		ID:                d.ID,
		Title:             d.Title,
		Description:       d.Description,
		Value:             d.Value,
		WeightedValue:     d.WeightedValue(),
		Stage:             string(d.Stage),
		Probability:       d.Probability,
		ContactID:         d.ContactID,
		AssignedTo:        d.AssignedTo,
		ExpectedCloseDate: d.ExpectedCloseDate,
		ActualCloseDate:   d.ActualCloseDate,
		Source:            d.Source,
		Notes:             d.Notes,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
		Version:           d.Version,
	}
}

// ToDealListResponses converts deal list items to responses
func ToDealListResponses(items []crm.DealListItem) []DealListResponse {
	responses := make([]DealListResponse, len(items))
	for i := range items {
		responses[i] = DealListResponse{
			DealResponse: ToDealResponse(&items[i].Deal),
			ContactName:  items[i].ContactName,
			CompanyName:  items[i].CompanyName,
			AssigneeName: items[i].AssigneeName,
		}
	}
	return responses
}
