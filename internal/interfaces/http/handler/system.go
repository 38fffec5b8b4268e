package handler

import (
	posapp "github.com/erp/pos/internal/application/pos"
	"github.com/gin-gonic/gin"
)

// SystemHandler answers liveness probes and basic runtime figures
type SystemHandler struct {
	BaseHandler
	sessions *posapp.Manager
	version  string
}

// NewSystemHandler creates a system handler
func NewSystemHandler(sessions *posapp.Manager, version string) *SystemHandler {
	return &SystemHandler{sessions: sessions, version: version}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/system/health", h.Health)
}

// Health reports service status and the number of open sessions
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{
		"status":        "ok",
		"version":       h.version,
		"open_sessions": h.sessions.Count(),
	})
}
