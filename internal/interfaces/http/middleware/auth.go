package middleware

import (
	"net/http"
	"strings"

	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionKey       = "auth_session"
	SessionUserIDKey = "auth_user_id"
	SessionEmailKey  = "auth_email"
	SessionRoleKey   = "auth_role"

	authHeaderKey = "Authorization"
	bearerPrefix  = "Bearer "
)

// AuthMiddlewareConfig holds configuration for the auth gate
type AuthMiddlewareConfig struct {
	// Provider resolves bearer tokens to sessions. The static provider
	// ignores the token entirely.
	Provider identityapp.Provider
	// RequireToken demands a bearer header before consulting the
	// provider. False in static mode.
	RequireToken bool
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultAuthConfig returns the default auth gate configuration
func DefaultAuthConfig(provider identityapp.Provider, requireToken bool) AuthMiddlewareConfig {
	return AuthMiddlewareConfig{
		Provider:     provider,
		RequireToken: requireToken,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/api/v1/health",
			"/api/v1/auth/sign-in",
			"/api/v1/auth/sign-up",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: nil,
	}
}

// AuthMiddleware gates /api/v1 routes behind the configured provider
func AuthMiddleware(cfg AuthMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		token, ok := bearerToken(c)
		if !ok && cfg.RequireToken {
			abortUnauthorized(c, "Missing or malformed authorization header")
			return
		}

		session, err := cfg.Provider.CurrentSession(c.Request.Context(), token)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("Session resolution failed",
					zap.String("path", path),
					zap.Error(err))
			}
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		c.Set(SessionKey, session)
		c.Set(SessionUserIDKey, session.UserID.String())
		c.Set(SessionEmailKey, session.Email)
		c.Set(SessionRoleKey, session.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(authHeaderKey)
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// GetSession returns the session attached by the auth middleware
func GetSession(c *gin.Context) (*identityapp.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*identityapp.Session)
	return session, ok
}

// GetSessionUserID returns the authenticated user's ID, or uuid.Nil
func GetSessionUserID(c *gin.Context) uuid.UUID {
	session, ok := GetSession(c)
	if !ok {
		return uuid.Nil
	}
	return session.UserID
}
