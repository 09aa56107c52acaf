package handler

import (
	"github.com/gin-gonic/gin"

	dashboardapp "github.com/crm/backend/internal/application/dashboard"
)

// DashboardHandler exposes the workspace overview endpoint
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboardapp.Service
}

func NewDashboardHandler(dashboardService *dashboardapp.Service) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats returns aggregate counts, pipeline totals and recent activity
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}
