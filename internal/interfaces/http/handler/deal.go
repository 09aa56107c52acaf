package handler

import (
	"github.com/gin-gonic/gin"

	crmapp "github.com/crm/backend/internal/application/crm"
)

// DealHandler exposes deal pipeline endpoints
type DealHandler struct {
	BaseHandler
	dealService *crmapp.DealService
}

func NewDealHandler(dealService *crmapp.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

// Create adds a new deal
func (h *DealHandler) Create(c *gin.Context) {
	var req crmapp.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	deal, err := h.dealService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, deal)
}

// GetByID returns a single deal
func (h *DealHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid deal ID")
		return
	}

	deal, err := h.dealService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, deal)
}

// List returns a filtered deal page
func (h *DealHandler) List(c *gin.Context) {
	var filter crmapp.DealListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	deals, total, err := h.dealService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, deals, total, pageOf(filter.Page), pageSizeOf(filter.PageSize))
}

// Update applies a partial deal update
func (h *DealHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid deal ID")
		return
	}

	var req crmapp.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	deal, err := h.dealService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, deal)
}

// MoveStage moves a deal to a new pipeline stage
func (h *DealHandler) MoveStage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid deal ID")
		return
	}

	var req crmapp.MoveDealStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	deal, err := h.dealService.MoveStage(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, deal)
}

// Delete removes a deal
func (h *DealHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid deal ID")
		return
	}

	if err := h.dealService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// PipelineStats returns aggregate pipeline metrics
func (h *DealHandler) PipelineStats(c *gin.Context) {
	stats, err := h.dealService.PipelineStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}
