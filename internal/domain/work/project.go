package work

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// IsValid checks if the status is a known value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Priority is shared between projects and tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is a known value
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Project is a unit of delivery work, optionally linked to a client contact
type Project struct {
	shared.BaseAggregateRoot
	Name        string
	Description *string
	Status      ProjectStatus
	Priority    Priority
	StartDate   *time.Time
	DueDate     *time.Time
	Budget      *decimal.Decimal
	ClientID    *uuid.UUID
	ManagerID   *uuid.UUID
	Progress    int
}

// NewProject creates a project in the planning state
func NewProject(name string, priority Priority) (*Project, error) {
	fields := map[string]string{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "Name is required"
	}
	if !priority.IsValid() {
		fields["priority"] = "Priority must be low, medium, high or urgent"
	}
	if len(fields) > 0 {
		return nil, shared.NewValidationError(fields)
	}

	project := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Status:            ProjectPlanning,
		Priority:          priority,
		Progress:          0,
	}
	project.AddDomainEvent(NewProjectCreatedEvent(project))
	return project, nil
}

// Rename updates the project name
func (p *Project) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError(map[string]string{"name": "Name is required"})
	}
	p.Name = strings.TrimSpace(name)
	p.touch()
	return nil
}

// ChangeStatus moves the project through its lifecycle
func (p *Project) ChangeStatus(status ProjectStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PROJECT_STATUS", "Unknown project status")
	}
	previous := p.Status
	p.Status = status
	if status == ProjectCompleted {
		p.Progress = 100
	}
	p.touch()
	if previous != status {
		p.AddDomainEvent(NewProjectStatusChangedEvent(p, previous))
	}
	return nil
}

// ChangePriority updates the priority
func (p *Project) ChangePriority(priority Priority) error {
	if !priority.IsValid() {
		return shared.NewValidationError(map[string]string{"priority": "Priority must be low, medium, high or urgent"})
	}
	p.Priority = priority
	p.touch()
	return nil
}

// SetProgress updates completion progress
func (p *Project) SetProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return shared.NewValidationError(map[string]string{"progress": "Progress must be between 0 and 100"})
	}
	p.Progress = progress
	p.touch()
	return nil
}

// SetDescription updates the description, nil clears it
func (p *Project) SetDescription(description *string) {
	p.Description = normalizeOptional(description)
	p.touch()
}

// SetSchedule updates start and due dates, nil clears each
func (p *Project) SetSchedule(startDate, dueDate *time.Time) error {
	if startDate != nil && dueDate != nil && dueDate.Before(*startDate) {
		return shared.NewValidationError(map[string]string{"due_date": "Due date must not precede the start date"})
	}
	p.StartDate = startDate
	p.DueDate = dueDate
	p.touch()
	return nil
}

// SetBudget updates the budget, nil clears it
func (p *Project) SetBudget(budget *decimal.Decimal) error {
	if budget != nil && budget.IsNegative() {
		return shared.NewValidationError(map[string]string{"budget": "Budget must not be negative"})
	}
	p.Budget = budget
	p.touch()
	return nil
}

// SetClient links the project to a client contact, nil unlinks
func (p *Project) SetClient(contactID *uuid.UUID) {
	p.ClientID = contactID
	p.touch()
}

// SetManager assigns the managing user, nil unassigns
func (p *Project) SetManager(userID *uuid.UUID) {
	p.ManagerID = userID
	p.touch()
}

func (p *Project) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// normalizeOptional maps empty or whitespace-only strings to nil
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
