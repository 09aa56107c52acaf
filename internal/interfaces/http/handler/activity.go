package handler

import (
	"github.com/gin-gonic/gin"

	workapp "github.com/crm/backend/internal/application/work"
)

// ActivityHandler exposes the activity feed endpoints
type ActivityHandler struct {
	BaseHandler
	activityService *workapp.ActivityService
}

func NewActivityHandler(activityService *workapp.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Record appends a manual activity, attributed to the signed-in user
func (h *ActivityHandler) Record(c *gin.Context) {
	var req workapp.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.UserID = sessionUserID(c)

	activity, err := h.activityService.Record(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, activity)
}

// List returns the global activity feed, newest first
func (h *ActivityHandler) List(c *gin.Context) {
	var filter workapp.ActivityListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	activities, total, err := h.activityService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, activities, total, pageOf(filter.Page), pageSizeOf(filter.PageSize))
}

// ListByEntity returns the activity trail of a single record
func (h *ActivityHandler) ListByEntity(c *gin.Context) {
	entityType := c.Param("type")
	entityID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid entity ID")
		return
	}

	var filter workapp.ActivityListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	activities, total, err := h.activityService.ListByEntity(c.Request.Context(), entityType, entityID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, activities, total, pageOf(filter.Page), pageSizeOf(filter.PageSize))
}
