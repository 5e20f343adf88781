package device

import "context"

// Controller defines the operations a client session offers against an RGB
// daemon. A Controller is owned by one caller and is not safe for concurrent use.
type Controller interface {
	// DevicesByType returns the devices of the given category
	DevicesByType(ctx context.Context, t DeviceType) ([]Device, error)

	// Profiles returns the names of all saved profiles, in daemon order
	Profiles(ctx context.Context) ([]string, error)

	// LoadProfile activates a saved profile
	LoadProfile(ctx context.Context, name string) error

	// SaveProfile persists the current lighting state under name
	SaveProfile(ctx context.Context, name string) error

	// DeleteProfile removes a saved profile
	DeleteProfile(ctx context.Context, name string) error

	// Close ends the session. Calling it more than once is safe.
	Close() error
}
