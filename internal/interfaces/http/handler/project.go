package handler

import (
	"github.com/gin-gonic/gin"

	workapp "github.com/crm/backend/internal/application/work"
)

// ProjectHandler exposes project management endpoints
type ProjectHandler struct {
	BaseHandler
	projectService *workapp.ProjectService
	taskService    *workapp.TaskService
}

func NewProjectHandler(projectService *workapp.ProjectService, taskService *workapp.TaskService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, taskService: taskService}
}

// Create adds a new project
func (h *ProjectHandler) Create(c *gin.Context) {
	var req workapp.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, project)
}

// GetByID returns a single project
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}

// List returns a filtered project page
func (h *ProjectHandler) List(c *gin.Context) {
	var filter workapp.ProjectListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	projects, total, err := h.projectService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, projects, total, pageOf(filter.Page), pageSizeOf(filter.PageSize))
}

// ListTasks returns the tasks belonging to a project
func (h *ProjectHandler) ListTasks(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var filter workapp.TaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	tasks, total, err := h.taskService.ListByProject(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, tasks, total, pageOf(filter.Page), pageSizeOf(filter.PageSize))
}

// Update applies a partial project update
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req workapp.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}

// Delete removes a project
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
