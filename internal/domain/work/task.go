package work

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TaskStatus is the board column a task sits in
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// IsValid checks if the status is a known value
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

// BoardColumns lists the board columns in display order
func BoardColumns() []TaskStatus {
	return []TaskStatus{TaskTodo, TaskInProgress, TaskReview, TaskDone}
}

// Task is a unit of work, optionally attached to a project
type Task struct {
	shared.BaseAggregateRoot
	Title          string
	Description    *string
	Status         TaskStatus
	Priority       Priority
	ProjectID      *uuid.UUID
	AssignedTo     *uuid.UUID
	CreatedBy      *uuid.UUID
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string
}

// NewTask creates a task in the todo column
func NewTask(title string, priority Priority) (*Task, error) {
	fields := map[string]string{}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "Title is required"
	}
	if !priority.IsValid() {
		fields["priority"] = "Priority must be low, medium, high or urgent"
	}
	if len(fields) > 0 {
		return nil, shared.NewValidationError(fields)
	}

	task := &Task{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             strings.TrimSpace(title),
		Status:            TaskTodo,
		Priority:          priority,
		Tags:              []string{},
	}
	task.AddDomainEvent(NewTaskCreatedEvent(task))
	return task, nil
}

// Rename updates the title
func (t *Task) Rename(title string) error {
	if strings.TrimSpace(title) == "" {
		return shared.NewValidationError(map[string]string{"title": "Title is required"})
	}
	t.Title = strings.TrimSpace(title)
	t.touch()
	return nil
}

// MoveToStatus moves the task to another board column
func (t *Task) MoveToStatus(status TaskStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_TASK_STATUS", "Unknown task status")
	}
	previous := t.Status
	t.Status = status
	t.touch()
	if previous != status {
		t.AddDomainEvent(NewTaskStatusChangedEvent(t, previous))
	}
	return nil
}

// ChangePriority updates the priority
func (t *Task) ChangePriority(priority Priority) error {
	if !priority.IsValid() {
		return shared.NewValidationError(map[string]string{"priority": "Priority must be low, medium, high or urgent"})
	}
	t.Priority = priority
	t.touch()
	return nil
}

// SetDescription updates the description, nil clears it
func (t *Task) SetDescription(description *string) {
	t.Description = normalizeOptional(description)
	t.touch()
}

// AttachToProject links the task to a project, nil detaches
func (t *Task) AttachToProject(projectID *uuid.UUID) {
	t.ProjectID = projectID
	t.touch()
}

// AssignTo sets the assignee, nil unassigns
func (t *Task) AssignTo(userID *uuid.UUID) {
	t.AssignedTo = userID
	t.touch()
}

// SetCreator records who created the task
func (t *Task) SetCreator(userID *uuid.UUID) {
	t.CreatedBy = userID
}

// SetDueDate updates the due date, nil clears it
func (t *Task) SetDueDate(dueDate *time.Time) {
	t.DueDate = dueDate
	t.touch()
}

// SetHours updates estimated and actual hours, nil clears each
func (t *Task) SetHours(estimated, actual *float64) error {
	fields := map[string]string{}
	if estimated != nil && *estimated < 0 {
		fields["estimated_hours"] = "Estimated hours must not be negative"
	}
	if actual != nil && *actual < 0 {
		fields["actual_hours"] = "Actual hours must not be negative"
	}
	if len(fields) > 0 {
		return shared.NewValidationError(fields)
	}
	t.EstimatedHours = estimated
	t.ActualHours = actual
	t.touch()
	return nil
}

// SetTags replaces the tag list, dropping blanks
func (t *Task) SetTags(tags []string) {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	t.Tags = cleaned
	t.touch()
}

func (t *Task) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}
