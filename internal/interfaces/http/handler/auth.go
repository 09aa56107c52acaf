package handler

import (
	"strings"

	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	provider    identityapp.Provider
	userService *identityapp.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(provider identityapp.Provider, userService *identityapp.UserService) *AuthHandler {
	return &AuthHandler{provider: provider, userService: userService}
}

// SignIn authenticates a user and starts a session
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req identityapp.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	response, err := h.provider.SignIn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// SignUp registers a new profile
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req identityapp.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	response, err := h.provider.SignUp(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, response)
}

// SignOut ends the current session
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.provider.SignOut(c.Request.Context(), bearerTokenFrom(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Refresh exchanges a refresh token for a new pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	tokens, err := h.provider.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tokens)
}

// Me returns the profile behind the current session
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		h.Unauthorized(c, "No active session")
		return
	}

	profile, err := h.userService.GetByID(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

func bearerTokenFrom(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	return strings.TrimPrefix(header, "Bearer ")
}
