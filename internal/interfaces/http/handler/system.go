package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SystemHandler serves health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db        *gorm.DB
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startedAt: time.Now(),
	}
}

// Health reports liveness plus a database ping
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"

	sqlDB, err := h.db.DB()
	if err != nil {
		status, dbStatus = "degraded", "unavailable"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		status, dbStatus = "degraded", "unavailable"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(h.startedAt).String(),
	})
}
