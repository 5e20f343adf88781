package sim

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urmzd/rgbprofile/pkg/device"
	"github.com/urmzd/rgbprofile/pkg/device/schema"
)

//go:embed fixture.schema.json
var fixtureSchema []byte

// Mode flag bits as OpenRGB defines them.
const (
	modeFlagHasSpeed      = 1 << 0
	modeFlagHasBrightness = 1 << 4
	modeFlagHasPerLED     = 1 << 5

	colorModePerLED = 1
)

var defaultModes = []string{"Direct", "Static", "Breathing", "Rainbow Wave"}

type fixture struct {
	Devices []fixtureDevice `json:"devices"`
}

type fixtureDevice struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Vendor      string   `json:"vendor"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Modes       []string `json:"modes"`
	LEDs        int      `json:"leds"`
}

// LoadFixture reads a device fixture file, validating it first.
func LoadFixture(path string, v *schema.Validator) ([]device.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data, v)
}

// ParseFixture validates and decodes a device fixture document.
func ParseFixture(data []byte, v *schema.Validator) ([]device.Device, error) {
	if err := v.ValidateJSON(fixtureSchema, data); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}

	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	devices := make([]device.Device, 0, len(f.Devices))
	for _, fd := range f.Devices {
		t, err := device.ParseDeviceType(fd.Type)
		if err != nil {
			return nil, fmt.Errorf("device %q: %w", fd.Name, err)
		}
		d := newDevice(fd.Name, t, fd.Modes, fd.LEDs)
		d.Vendor = fd.Vendor
		d.Description = fd.Description
		d.Location = fd.Location
		devices = append(devices, d)
	}
	return devices, nil
}

// DefaultDevices is the device set used when no fixture is given: two DRAM
// sticks and a GPU.
func DefaultDevices() []device.Device {
	ram1 := newDevice("Corsair Vengeance Pro RGB", device.TypeDRAM, nil, 10)
	ram1.Vendor = "Corsair"
	ram1.Location = "I2C: /dev/i2c-1, address 0x58"
	ram2 := newDevice("Corsair Vengeance Pro RGB", device.TypeDRAM, nil, 10)
	ram2.Vendor = "Corsair"
	ram2.Location = "I2C: /dev/i2c-1, address 0x59"
	gpu := newDevice("ASUS ROG STRIX RTX 3080", device.TypeGPU, []string{"Direct", "Static", "Spectrum Cycle"}, 22)
	gpu.Vendor = "ASUS"
	gpu.Location = "I2C: /dev/i2c-4, address 0x29"
	return []device.Device{ram1, ram2, gpu}
}

func newDevice(name string, t device.DeviceType, modeNames []string, leds int) device.Device {
	if len(modeNames) == 0 {
		modeNames = defaultModes
	}

	d := device.Device{
		Name:        name,
		Type:        t,
		Description: "Simulated " + t.String() + " device",
		Version:     "sim",
		Modes:       make([]device.Mode, 0, len(modeNames)),
		LEDs:        make([]device.LED, 0, leds),
		Colors:      make([]device.Color, leds),
	}
	for i, mn := range modeNames {
		d.Modes = append(d.Modes, device.Mode{
			Name:          mn,
			Value:         int32(i),
			Flags:         modeFlagHasSpeed | modeFlagHasBrightness | modeFlagHasPerLED,
			SpeedMax:      4,
			BrightnessMax: 100,
			Brightness:    100,
			ColorMode:     colorModePerLED,
		})
	}
	for i := 0; i < leds; i++ {
		d.LEDs = append(d.LEDs, device.LED{Name: fmt.Sprintf("LED %d", i+1), Value: uint32(i)})
	}
	d.Zones = []device.Zone{{
		Name:      name + " Zone",
		Type:      0,
		LEDsMin:   uint32(leds),
		LEDsMax:   uint32(leds),
		LEDsCount: uint32(leds),
	}}
	return d
}
