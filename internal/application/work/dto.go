package work

import (
	"time"

	"github.com/crm/backend/internal/domain/work"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Project DTOs
// =============================================================================

// CreateProjectRequest represents a request to create a new project
type CreateProjectRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description string           `json:"description"`
	Priority    string           `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	StartDate   *time.Time       `json:"start_date"`
	DueDate     *time.Time       `json:"due_date"`
	Budget      *decimal.Decimal `json:"budget"`
	ClientID    *uuid.UUID       `json:"client_id"`
	ManagerID   *uuid.UUID       `json:"manager_id"`
}

// UpdateProjectRequest represents a partial update of a project
type UpdateProjectRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Status      *string          `json:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	Priority    *string          `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	StartDate   *time.Time       `json:"start_date"`
	DueDate     *time.Time       `json:"due_date"`
	Budget      *decimal.Decimal `json:"budget"`
	ClientID    *uuid.UUID       `json:"client_id"`
	ManagerID   *uuid.UUID       `json:"manager_id"`
	Progress    *int             `json:"progress" binding:"omitempty,min=0,max=100"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Status      string           `json:"status"`
	Priority    string           `json:"priority"`
	StartDate   *time.Time       `json:"start_date"`
	DueDate     *time.Time       `json:"due_date"`
	Budget      *decimal.Decimal `json:"budget"`
	ClientID    *uuid.UUID       `json:"client_id"`
	ManagerID   *uuid.UUID       `json:"manager_id"`
	Progress    int              `json:"progress"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Version     int              `json:"version"`
}

// ProjectListResponse represents a list item for projects
type ProjectListResponse struct {
	ProjectResponse
	ClientCompany *string `json:"client_company"`
	ManagerName   *string `json:"manager_name"`
}

// ProjectListFilter represents filter options for the project list
type ProjectListFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	Priority  string `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	ClientID  string `form:"client_id" binding:"omitempty,uuid"`
	ManagerID string `form:"manager_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProjectResponse converts a domain Project to ProjectResponse
func ToProjectResponse(p *work.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		Priority:    string(p.Priority),
		StartDate:   p.StartDate,
		DueDate:     p.DueDate,
		Budget:      p.Budget,
		ClientID:    p.ClientID,
		ManagerID:   p.ManagerID,
		Progress:    p.Progress,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToProjectListResponses converts project list items to responses
func ToProjectListResponses(items []work.ProjectListItem) []ProjectListResponse {
	responses := make([]ProjectListResponse, len(items))
	for i := range items {
		responses[i] = ProjectListResponse{
			ProjectResponse: ToProjectResponse(&items[i].Project),
			ClientCompany:   items[i].ClientCompany,
			ManagerName:     items[i].ManagerName,
		}
	}
	return responses
}

// =============================================================================
// Task DTOs
// =============================================================================

// CreateTaskRequest represents a request to create a new task
type CreateTaskRequest struct {
	Title          string     `json:"title" binding:"required,min=1,max=200"`
	Description    string     `json:"description"`
	Priority       string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	ProjectID      *uuid.UUID `json:"project_id"`
	AssignedTo     *uuid.UUID `json:"assigned_to"`
	CreatedBy      *uuid.UUID `json:"-"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	Tags           []string   `json:"tags"`
}

// UpdateTaskRequest represents a partial update of a task
type UpdateTaskRequest struct {
	Title          *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description    *string    `json:"description"`
	Status         *string    `json:"status" binding:"omitempty,oneof=todo in_progress review done"`
	Priority       *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	ProjectID      *uuid.UUID `json:"project_id"`
	AssignedTo     *uuid.UUID `json:"assigned_to"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	Tags           *[]string  `json:"tags"`
}

// MoveTaskRequest represents a drop of a task onto a board column.
// A nil status means the drop landed outside any column.
type MoveTaskRequest struct {
	Status *string `json:"status" binding:"omitempty,oneof=todo in_progress review done"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	ProjectID      *uuid.UUID `json:"project_id"`
	AssignedTo     *uuid.UUID `json:"assigned_to"`
	CreatedBy      *uuid.UUID `json:"created_by"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	Tags           []string   `json:"tags"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Version        int        `json:"version"`
}

// TaskListResponse represents a list item for tasks
type TaskListResponse struct {
	TaskResponse
	ProjectName    *string `json:"project_name"`
	AssigneeName   *string `json:"assignee_name"`
	AssigneeAvatar *string `json:"assignee_avatar"`
}

// TaskListFilter represents filter options for the task list
type TaskListFilter struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=todo in_progress review done"`
	Priority   string `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	ProjectID  string `form:"project_id" binding:"omitempty,uuid"`
	AssignedTo string `form:"assigned_to" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BoardResponse represents the kanban board grouped by column. Every column
// is present even when empty.
type BoardResponse struct {
	Columns map[string][]TaskListResponse `json:"columns"`
}

// ToTaskResponse converts a domain Task to TaskResponse
func ToTaskResponse(t *work.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		ProjectID:      t.ProjectID,
		AssignedTo:     t.AssignedTo,
		CreatedBy:      t.CreatedBy,
		DueDate:        t.DueDate,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Tags:           t.Tags,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Version:        t.Version,
	}
}

// ToTaskListResponses converts task list items to responses
func ToTaskListResponses(items []work.TaskListItem) []TaskListResponse {
	responses := make([]TaskListResponse, len(items))
	for i := range items {
		responses[i] = TaskListResponse{
			TaskResponse:   ToTaskResponse(&items[i].Task),
			ProjectName:    items[i].ProjectName,
			AssigneeName:   items[i].AssigneeName,
			AssigneeAvatar: items[i].AssigneeAvatar,
		}
	}
	return responses
}

// =============================================================================
// Activity DTOs
// =============================================================================

// RecordActivityRequest represents a request to append a feed entry
type RecordActivityRequest struct {
	Type       string         `json:"type" binding:"required,oneof=note email call meeting task deal_update project_update"`
	Title      string         `json:"title" binding:"required,min=1,max=300"`
	Content    string         `json:"content"`
	EntityType string         `json:"entity_type" binding:"required,min=1,max=30"`
	EntityID   uuid.UUID      `json:"entity_id" binding:"required"`
	UserID     *uuid.UUID     `json:"-"`
	Metadata   map[string]any `json:"metadata"`
}

// ActivityResponse represents a feed entry in API responses
type ActivityResponse struct {
	ID         uuid.UUID      `json:"id"`
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Content    *string        `json:"content"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	UserID     *uuid.UUID     `json:"user_id"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ActivityListResponse represents a feed list item
type ActivityListResponse struct {
	ActivityResponse
	UserName   *string `json:"user_name"`
	UserAvatar *string `json:"user_avatar"`
}

// ActivityListFilter represents filter options for the feed
type ActivityListFilter struct {
	Search     string `form:"search"`
	Type       string `form:"type" binding:"omitempty,oneof=note email call meeting task deal_update project_update"`
	EntityType string `form:"entity_type"`
	UserID     string `form:"user_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToActivityResponse converts a domain Activity to ActivityResponse
func ToActivityResponse(a *work.Activity) ActivityResponse {
	return ActivityResponse{
		ID:         a.ID,
		Type:       string(a.Type),
		Title:      a.Title,
		Content:    a.Content,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		UserID:     a.UserID,
		Metadata:   a.Metadata,
		CreatedAt:  a.CreatedAt,
	}
}

// ToActivityListResponses converts feed list items to responses
func ToActivityListResponses(items []work.ActivityListItem) []ActivityListResponse {
	responses := make([]ActivityListResponse, len(items))
	for i := range items {
		responses[i] = ActivityListResponse{
			ActivityResponse: ToActivityResponse(&items[i].Activity),
			UserName:         items[i].UserName,
			UserAvatar:       items[i].UserAvatar,
		}
	}
	return responses
}
