package handlers

import (
	"context"

	"github.com/urmzd/rgbprofile/pkg/device"
	"github.com/urmzd/rgbprofile/pkg/sim"
)

// Daemon is the read-only view of the simulator the admin API reports on.
type Daemon interface {
	Sessions() int
	SessionInfo() []sim.SessionInfo
	Devices() []device.Device
	Profiles(ctx context.Context) ([]string, error)
}
