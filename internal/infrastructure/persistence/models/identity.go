package models

import (
	"time"

	"github.com/crm/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	AggregateModel
	Email        string            `gorm:"type:varchar(200);not null;uniqueIndex"`
	FullName     string            `gorm:"type:varchar(200);not null"`
	AvatarURL    *string           `gorm:"type:text"`
	Role         identity.UserRole `gorm:"type:varchar(20);not null;default:'member'"`
	Department   *string           `gorm:"type:varchar(100)"`
	IsActive     bool              `gorm:"not null;default:true"`
	PasswordHash string            `gorm:"type:varchar(100)"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		FullName:          m.FullName,
		AvatarURL:         m.AvatarURL,
		Role:              m.Role,
		Department:        m.Department,
		IsActive:          m.IsActive,
		PasswordHash:      m.PasswordHash,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.FullName = u.FullName
	m.AvatarURL = u.AvatarURL
	m.Role = u.Role
	m.Department = u.Department
	m.IsActive = u.IsActive
	m.PasswordHash = u.PasswordHash
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
