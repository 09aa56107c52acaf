package models

import (
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContactModel is the persistence model for the Contact aggregate
type ContactModel struct {
	AggregateModel
	Type        crm.ContactType `gorm:"type:varchar(20);not null;default:'prospect'"`
	CompanyName string          `gorm:"type:varchar(200);not null"`
	FirstName   string          `gorm:"type:varchar(100);not null"`
	LastName    string          `gorm:"type:varchar(100);not null"`
	Email       string          `gorm:"type:varchar(200);not null;index"`
	Phone       *string         `gorm:"type:varchar(50)"`
	Position    *string         `gorm:"type:varchar(100)"`
	Industry    *string         `gorm:"type:varchar(100)"`
	Address     *string         `gorm:"type:text"`
	City        *string         `gorm:"type:varchar(100)"`
	Country     *string         `gorm:"type:varchar(100)"`
	Website     *string         `gorm:"type:varchar(200)"`
	Notes       *string         `gorm:"type:text"`
	AssignedTo  *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ToDomain converts the persistence model to a domain Contact
func (m *ContactModel) ToDomain() *crm.Contact {
	return &crm.Contact{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Type:              m.Type,
		CompanyName:       m.CompanyName,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Email:             m.Email,
		Phone:             m.Phone,
		Position:          m.Position,
		Industry:          m.Industry,
		Address:           m.Address,
		City:              m.City,
		Country:           m.Country,
		Website:           m.Website,
		Notes:             m.Notes,
		AssignedTo:        m.AssignedTo,
	}
}

// FromDomain populates the persistence model from a domain Contact
func (m *ContactModel) FromDomain(c *crm.Contact) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Type = c.Type
	m.CompanyName = c.CompanyName
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Email = c.Email
	m.Phone = c.Phone
	m.Position = c.Position
	m.Industry = c.Industry
	m.Address = c.Address
	m.City = c.City
	m.Country = c.Country
	m.Website = c.Website
	m.Notes = c.Notes
	m.AssignedTo = c.AssignedTo
}

// ContactModelFromDomain creates a persistence model from a domain Contact
func ContactModelFromDomain(c *crm.Contact) *ContactModel {
	m := &ContactModel{}
	m.FromDomain(c)
	return m
}

// DealModel is the persistence model for the Deal aggregate
type DealModel struct {
	AggregateModel
	Title             string          `gorm:"type:varchar(200);not null"`
	Description       *string         `gorm:"type:text"`
	Value             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Stage             crm.DealStage   `gorm:"type:varchar(20);not null;default:'lead';index"`
	Probability       int             `gorm:"not null;default:0"`
	ContactID         *uuid.UUID      `gorm:"type:uuid;index"`
	AssignedTo        *uuid.UUID      `gorm:"type:uuid;index"`
	ExpectedCloseDate *time.Time
	ActualCloseDate   *time.Time
	Source            *string `gorm:"type:varchar(100)"`
	Notes             *string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DealModel) TableName() string {
	return "deals"
}

// ToDomain converts the persistence model to a domain Deal
func (m *DealModel) ToDomain() *crm.Deal {
	return &crm.Deal{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Title:             m.Title,
		Description:       m.Description,
		Value:             m.Value,
		Stage:             m.Stage,
		Probability:       m.Probability,
		ContactID:         m.ContactID,
		AssignedTo:        m.AssignedTo,
		ExpectedCloseDate: m.ExpectedCloseDate,
		ActualCloseDate:   m.ActualCloseDate,
		Source:            m.Source,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Deal
func (m *DealModel) FromDomain(d *crm.Deal) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.Title = d.Title
	m.Description = d.Description
	m.Value = d.Value
	m.Stage = d.Stage
	m.Probability = d.Probability
	m.ContactID = d.ContactID
	m.AssignedTo = d.AssignedTo
	m.ExpectedCloseDate = d.ExpectedCloseDate
	m.ActualCloseDate = d.ActualCloseDate
	m.Source = d.Source
	m.Notes = d.Notes
}

// DealModelFromDomain creates a persistence model from a domain Deal
func DealModelFromDomain(d *crm.Deal) *DealModel {
	m := &DealModel{}
	m.FromDomain(d)
	return m
}
