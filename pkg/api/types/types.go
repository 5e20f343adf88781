package types

import (
	"time"

	"github.com/urmzd/rgbprofile/pkg/device"
)

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Sessions  int       `json:"sessions"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one open SDK client session
type Session struct {
	ID       string    `json:"id"`
	Client   string    `json:"client"`
	Remote   string    `json:"remote"`
	OpenedAt time.Time `json:"opened_at"`
}

// SessionsResponse is returned from GET /sessions
type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
	Count    int       `json:"count"`
}

// ListProfilesResponse is returned from GET /profiles
type ListProfilesResponse struct {
	Profiles []string `json:"profiles"`
	Count    int      `json:"count"`
}

// DeviceSummary is the per-device view the CLI's list-devices action prints,
// plus the active mode
type DeviceSummary struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Vendor     string `json:"vendor,omitempty"`
	Location   string `json:"location,omitempty"`
	ModeCount  int    `json:"mode_count"`
	LEDCount   int    `json:"led_count"`
	ActiveMode string `json:"active_mode,omitempty"`
}

// ListDevicesResponse is returned from GET /devices
type ListDevicesResponse struct {
	Devices []DeviceSummary `json:"devices"`
	Count   int             `json:"count"`
}

// DeviceResponse is returned from GET /devices/:index
type DeviceResponse struct {
	Device DeviceSummary  `json:"device"`
	Colors []device.Color `json:"colors"`
}
