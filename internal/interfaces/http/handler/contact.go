package handler

import (
	"github.com/gin-gonic/gin"

	crmapp "github.com/crm/backend/internal/application/crm"
)

// ContactHandler exposes contact management endpoints
type ContactHandler struct {
	BaseHandler
	contactService *crmapp.ContactService
}

func NewContactHandler(contactService *crmapp.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Create adds a new contact
func (h *ContactHandler) Create(c *gin.Context) {
	var req crmapp.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, contact)
}

// GetByID returns a single contact
func (h *ContactHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	contact, err := h.contactService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// List returns a filtered contact page
func (h *ContactHandler) List(c *gin.Context) {
	var filter crmapp.ContactListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	contacts, total, err := h.contactService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, contacts, total, pageOf(filter.Page), pageSizeOf(filter.PageSize))
}

// Update applies a partial contact update
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	var req crmapp.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	contact, err := h.contactService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// Delete removes a contact
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
