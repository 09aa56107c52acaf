package handler

import (
	"github.com/gin-gonic/gin"

	workapp "github.com/crm/backend/internal/application/work"
)

// TaskHandler exposes task and kanban board endpoints
type TaskHandler struct {
	BaseHandler
	taskService  *workapp.TaskService
	boardService *workapp.BoardService
}

func NewTaskHandler(taskService *workapp.TaskService, boardService *workapp.BoardService) *TaskHandler {
	return &TaskHandler{taskService: taskService, boardService: boardService}
}

// Create adds a new task, attributed to the signed-in user
func (h *TaskHandler) Create(c *gin.Context) {
	var req workapp.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.CreatedBy = sessionUserID(c)

	task, err := h.taskService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, task)
}

// GetByID returns a single task
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, task)
}

// List returns a filtered task page
func (h *TaskHandler) List(c *gin.Context) {
	var filter workapp.TaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	tasks, total, err := h.taskService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, tasks, total, pageOf(filter.Page), pageSizeOf(filter.PageSize))
}

// Board returns tasks grouped into kanban columns
func (h *TaskHandler) Board(c *gin.Context) {
	var filter workapp.TaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	board, err := h.boardService.GetBoard(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, board)
}

// Move drops a task onto a board column
func (h *TaskHandler) Move(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	var req workapp.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	task, err := h.boardService.MoveTask(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, task)
}

// Update applies a partial task update
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	var req workapp.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, task)
}

// Delete removes a task
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
