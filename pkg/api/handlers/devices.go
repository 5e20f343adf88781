package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/rgbprofile/pkg/api/types"
	"github.com/urmzd/rgbprofile/pkg/device"
)

// DevicesHandler handles device read endpoints
type DevicesHandler struct {
	daemon Daemon
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(daemon Daemon) *DevicesHandler {
	return &DevicesHandler{daemon: daemon}
}

// ListDevices handles GET /devices, optionally filtered by ?type=DRAM
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	filter := c.Query("type")
	var want device.DeviceType
	if filter != "" {
		t, err := device.ParseDeviceType(filter)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
		want = t
	}

	result := []types.DeviceSummary{}
	for _, d := range h.daemon.Devices() {
		if filter != "" && d.Type != want {
			continue
		}
		result = append(result, summarize(d))
	}

	c.JSON(http.StatusOK, types.ListDevicesResponse{
		Devices: result,
		Count:   len(result),
	})
}

// GetDevice handles GET /devices/:index
func (h *DevicesHandler) GetDevice(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "device index must be an integer",
		})
		return
	}

	devices := h.daemon.Devices()
	if index < 0 || index >= len(devices) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:   "not_found",
			Message: "Device not found",
		})
		return
	}

	d := devices[index]
	c.JSON(http.StatusOK, types.DeviceResponse{
		Device: summarize(d),
		Colors: d.Colors,
	})
}

func summarize(d device.Device) types.DeviceSummary {
	s := types.DeviceSummary{
		Index:     d.Index,
		Name:      d.Name,
		Type:      d.Type.String(),
		Vendor:    d.Vendor,
		Location:  d.Location,
		ModeCount: len(d.Modes),
		LEDCount:  len(d.LEDs),
	}
	if d.ActiveMode >= 0 && int(d.ActiveMode) < len(d.Modes) {
		s.ActiveMode = d.Modes[d.ActiveMode].Name
	}
	return s
}
