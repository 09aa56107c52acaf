package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouterDefaults(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetupMountsGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewGroup("/widgets")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/widgets/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterMiddlewareAppliesToAllGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		c.Header("X-Test", "applied")
		c.Next()
	})

	group := NewGroup("/widgets")
	group.GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/widgets", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "applied", w.Header().Get("X-Test"))
}

func TestGroupMiddlewareScopedToGroup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	guarded := NewGroup("/guarded")
	guarded.Use(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusForbidden)
	})
	guarded.GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	open := NewGroup("/open")
	open.GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.Register(guarded, open)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/guarded", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest("GET", "/api/v1/open", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
