package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/rgbprofile/pkg/api/types"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	daemon Daemon
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(daemon Daemon) *HealthHandler {
	return &HealthHandler{daemon: daemon}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:    "healthy",
		Sessions:  h.daemon.Sessions(),
		Timestamp: time.Now(),
	})
}
