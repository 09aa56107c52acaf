package models

import (
	"time"

	"github.com/crm/backend/internal/domain/work"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectModel is the persistence model for the Project aggregate
type ProjectModel struct {
	AggregateModel
	Name        string             `gorm:"type:varchar(200);not null"`
	Description *string            `gorm:"type:text"`
	Status      work.ProjectStatus `gorm:"type:varchar(20);not null;default:'planning';index"`
	Priority    work.Priority      `gorm:"type:varchar(20);not null;default:'medium'"`
	StartDate   *time.Time
	DueDate     *time.Time
	Budget      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ClientID    *uuid.UUID       `gorm:"type:uuid;index"`
	ManagerID   *uuid.UUID       `gorm:"type:uuid;index"`
	Progress    int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() *work.Project {
	return &work.Project{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Status:            m.Status,
		Priority:          m.Priority,
		StartDate:         m.StartDate,
		DueDate:           m.DueDate,
		Budget:            m.Budget,
		ClientID:          m.ClientID,
		ManagerID:         m.ManagerID,
		Progress:          m.Progress,
	}
}

// FromDomain populates the persistence model from a domain Project
func (m *ProjectModel) FromDomain(p *work.Project) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.Status = p.Status
	m.Priority = p.Priority
	m.StartDate = p.StartDate
	m.DueDate = p.DueDate
	m.Budget = p.Budget
	m.ClientID = p.ClientID
	m.ManagerID = p.ManagerID
	m.Progress = p.Progress
}

// ProjectModelFromDomain creates a persistence model from a domain Project
func ProjectModelFromDomain(p *work.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}

// TaskModel is the persistence model for the Task aggregate.
// Tags are stored as a JSON column so the model works on both
// postgres and the sqlite driver used in tests.
type TaskModel struct {
	AggregateModel
	Title          string          `gorm:"type:varchar(200);not null"`
	Description    *string         `gorm:"type:text"`
	Status         work.TaskStatus `gorm:"type:varchar(20);not null;default:'todo';index"`
	Priority       work.Priority   `gorm:"type:varchar(20);not null;default:'medium'"`
	ProjectID      *uuid.UUID      `gorm:"type:uuid;index"`
	AssignedTo     *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedBy      *uuid.UUID      `gorm:"type:uuid"`
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string `gorm:"serializer:json;type:text"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence model to a domain Task
func (m *TaskModel) ToDomain() *work.Task {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return &work.Task{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Title:             m.Title,
		Description:       m.Description,
		Status:            m.Status,
		Priority:          m.Priority,
		ProjectID:         m.ProjectID,
		AssignedTo:        m.AssignedTo,
		CreatedBy:         m.CreatedBy,
		DueDate:           m.DueDate,
		EstimatedHours:    m.EstimatedHours,
		ActualHours:       m.ActualHours,
		Tags:              tags,
	}
}

// FromDomain populates the persistence model from a domain Task
func (m *TaskModel) FromDomain(t *work.Task) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Title = t.Title
	m.Description = t.Description
	m.Status = t.Status
	m.Priority = t.Priority
	m.ProjectID = t.ProjectID
	m.AssignedTo = t.AssignedTo
	m.CreatedBy = t.CreatedBy
	m.DueDate = t.DueDate
	m.EstimatedHours = t.EstimatedHours
	m.ActualHours = t.ActualHours
	m.Tags = t.Tags
}

// TaskModelFromDomain creates a persistence model from a domain Task
func TaskModelFromDomain(t *work.Task) *TaskModel {
	m := &TaskModel{}
	m.FromDomain(t)
	return m
}

// ActivityModel is the persistence model for feed entries. Activities are
// append-only so the model carries no UpdatedAt or Version column.
type ActivityModel struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key"`
	Type       work.ActivityType `gorm:"type:varchar(30);not null"`
	Title      string            `gorm:"type:varchar(300);not null"`
	Content    *string           `gorm:"type:text"`
	EntityType string            `gorm:"type:varchar(30);not null;index:idx_activities_entity"`
	EntityID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_activities_entity"`
	UserID     *uuid.UUID        `gorm:"type:uuid;index"`
	Metadata   map[string]any    `gorm:"serializer:json;type:text"`
	CreatedAt  time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ActivityModel) TableName() string {
	return "activities"
}

// ToDomain converts the persistence model to a domain Activity
func (m *ActivityModel) ToDomain() *work.Activity {
	return &work.Activity{
		ID:         m.ID,
		Type:       m.Type,
		Title:      m.Title,
		Content:    m.Content,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		UserID:     m.UserID,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}

// ActivityModelFromDomain creates a persistence model from a domain Activity
func ActivityModelFromDomain(a *work.Activity) *ActivityModel {
	return &ActivityModel{
		ID:         a.ID,
		Type:       a.Type,
		Title:      a.Title,
		Content:    a.Content,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		UserID:     a.UserID,
		Metadata:   a.Metadata,
		CreatedAt:  a.CreatedAt,
	}
}
