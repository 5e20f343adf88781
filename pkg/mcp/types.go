package mcp

// --- Health Tool ---

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status    string `json:"status" jsonschema:"description=Overall health status (healthy or unhealthy)"`
	Server    string `json:"server" jsonschema:"description=OpenRGB server connection status"`
	Error     string `json:"error,omitempty" jsonschema:"description=Connection error when unreachable"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- Profile Tools ---

// ListProfilesOutput is the output for the list_profiles tool
type ListProfilesOutput struct {
	Profiles []string `json:"profiles" jsonschema:"description=Saved profile names in server order"`
	Count    int      `json:"count" jsonschema:"description=Total number of profiles"`
}

// ProfileActionOutput is the output for load_profile, save_profile and
// delete_profile
type ProfileActionOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the action succeeded"`
	Profile string `json:"profile" jsonschema:"description=Profile name"`
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- List Devices Tool ---

// ListDevicesOutput is the output for the list_devices tool
type ListDevicesOutput struct {
	Type    string       `json:"type" jsonschema:"description=Device type that was listed"`
	Devices []DeviceInfo `json:"devices" jsonschema:"description=Matching devices"`
	Count   int          `json:"count" jsonschema:"description=Total number of devices"`
}

// DeviceInfo represents a device in tool outputs
type DeviceInfo struct {
	Index      int    `json:"index" jsonschema:"description=Controller index on the server"`
	Name       string `json:"name" jsonschema:"description=Device name"`
	Type       string `json:"type" jsonschema:"description=Device type"`
	Vendor     string `json:"vendor,omitempty" jsonschema:"description=Device vendor"`
	ActiveMode string `json:"active_mode,omitempty" jsonschema:"description=Name of the active mode"`
	Modes      int    `json:"modes" jsonschema:"description=Number of supported modes"`
	LEDs       int    `json:"leds" jsonschema:"description=Number of LEDs"`
}
