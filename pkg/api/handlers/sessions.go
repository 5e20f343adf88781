package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/rgbprofile/pkg/api/types"
)

// SessionsHandler reports open SDK sessions
type SessionsHandler struct {
	daemon Daemon
}

// NewSessionsHandler creates a new sessions handler
func NewSessionsHandler(daemon Daemon) *SessionsHandler {
	return &SessionsHandler{daemon: daemon}
}

// ListSessions handles GET /sessions
func (h *SessionsHandler) ListSessions(c *gin.Context) {
	infos := h.daemon.SessionInfo()
	result := make([]types.Session, 0, len(infos))
	for _, info := range infos {
		result = append(result, types.Session{
			ID:       info.ID,
			Client:   info.Client,
			Remote:   info.Remote,
			OpenedAt: info.OpenedAt,
		})
	}
	c.JSON(http.StatusOK, types.SessionsResponse{
		Sessions: result,
		Count:    len(result),
	})
}
