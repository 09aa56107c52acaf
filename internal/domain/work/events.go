package work

import "github.com/crm/backend/internal/domain/shared"

// Event types for the work domain
const (
	EventProjectCreated       = "work.project.created"
	EventProjectStatusChanged = "work.project.status_changed"
	EventTaskCreated          = "work.task.created"
	EventTaskStatusChanged    = "work.task.status_changed"
)

// ProjectCreatedEvent is raised when a project is created
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	Name     string   `json:"name"`
	Priority Priority `json:"priority"`
}

// NewProjectCreatedEvent creates a ProjectCreatedEvent
func NewProjectCreatedEvent(project *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProjectCreated, "Project", project.ID),
		Name:            project.Name,
		Priority:        project.Priority,
	}
}

// ProjectStatusChangedEvent is raised when a project changes lifecycle state
type ProjectStatusChangedEvent struct {
	shared.BaseDomainEvent
	Name           string        `json:"name"`
	PreviousStatus ProjectStatus `json:"previous_status"`
	NewStatus      ProjectStatus `json:"new_status"`
}

// NewProjectStatusChangedEvent creates a ProjectStatusChangedEvent
func NewProjectStatusChangedEvent(project *Project, previous ProjectStatus) *ProjectStatusChangedEvent {
	return &ProjectStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProjectStatusChanged, "Project", project.ID),
		Name:            project.Name,
		PreviousStatus:  previous,
		NewStatus:       project.Status,
	}
}

// TaskCreatedEvent is raised when a task is created
type TaskCreatedEvent struct {
	shared.BaseDomainEvent
	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
}

// NewTaskCreatedEvent creates a TaskCreatedEvent
func NewTaskCreatedEvent(task *Task) *TaskCreatedEvent {
	return &TaskCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTaskCreated, "Task", task.ID),
		Title:           task.Title,
		Priority:        task.Priority,
	}
}

// TaskStatusChangedEvent is raised when a task moves between board columns
type TaskStatusChangedEvent struct {
	shared.BaseDomainEvent
	Title          string     `json:"title"`
	PreviousStatus TaskStatus `json:"previous_status"`
	NewStatus      TaskStatus `json:"new_status"`
}

// NewTaskStatusChangedEvent creates a TaskStatusChangedEvent
func NewTaskStatusChangedEvent(task *Task, previous TaskStatus) *TaskStatusChangedEvent {
	return &TaskStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTaskStatusChanged, "Task", task.ID),
		Title:           task.Title,
		PreviousStatus:  previous,
		NewStatus:       task.Status,
	}
}
