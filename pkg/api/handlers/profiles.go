package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/rgbprofile/pkg/api/types"
)

// ProfilesHandler lists saved profiles
type ProfilesHandler struct {
	daemon Daemon
}

// NewProfilesHandler creates a new profiles handler
func NewProfilesHandler(daemon Daemon) *ProfilesHandler {
	return &ProfilesHandler{daemon: daemon}
}

// ListProfiles handles GET /profiles
func (h *ProfilesHandler) ListProfiles(c *gin.Context) {
	names, err := h.daemon.Profiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "store_error",
			Message: err.Error(),
		})
		return
	}
	if names == nil {
		names = []string{}
	}

	c.JSON(http.StatusOK, types.ListProfilesResponse{
		Profiles: names,
		Count:    len(names),
	})
}
