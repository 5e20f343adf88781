package device

import (
	"fmt"
	"strings"
)

// DeviceType is the RGB controller category reported by the daemon.
// Values match the OpenRGB numbering and are sent on the wire as int32.
type DeviceType int32

// Device type constants
const (
	TypeMotherboard DeviceType = iota
	TypeDRAM
	TypeGPU
	TypeCooler
	TypeLEDStrip
	TypeKeyboard
	TypeMouse
	TypeMouseMat
	TypeHeadset
	TypeHeadsetStand
	TypeGamepad
	TypeLight
	TypeSpeaker
	TypeVirtual
	TypeStorage
	TypeCase
	TypeMicrophone
	TypeAccessory
	TypeKeypad
	TypeUnknown
)

var deviceTypeNames = [...]string{
	"Motherboard", "DRAM", "GPU", "Cooler", "LEDStrip", "Keyboard", "Mouse",
	"MouseMat", "Headset", "HeadsetStand", "Gamepad", "Light", "Speaker",
	"Virtual", "Storage", "Case", "Microphone", "Accessory", "Keypad", "Unknown",
}

func (t DeviceType) String() string {
	if t < 0 || int(t) >= len(deviceTypeNames) {
		return fmt.Sprintf("DeviceType(%d)", int32(t))
	}
	return deviceTypeNames[t]
}

// ParseDeviceType maps a case-insensitive type name back to its DeviceType.
func ParseDeviceType(s string) (DeviceType, error) {
	for i, name := range deviceTypeNames {
		if strings.EqualFold(name, s) {
			return DeviceType(i), nil
		}
	}
	return TypeUnknown, fmt.Errorf("unknown device type %q", s)
}

// Color is a single RGB value. The wire form carries a padding byte after Blue.
type Color struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
}

// Mode is one lighting effect a device supports.
type Mode struct {
	Name          string  `json:"name"`
	Value         int32   `json:"value"`
	Flags         uint32  `json:"flags"`
	SpeedMin      uint32  `json:"speed_min"`
	SpeedMax      uint32  `json:"speed_max"`
	BrightnessMin uint32  `json:"brightness_min"`
	BrightnessMax uint32  `json:"brightness_max"`
	ColorsMin     uint32  `json:"colors_min"`
	ColorsMax     uint32  `json:"colors_max"`
	Speed         uint32  `json:"speed"`
	Brightness    uint32  `json:"brightness"`
	Direction     uint32  `json:"direction"`
	ColorMode     uint32  `json:"color_mode"`
	Colors        []Color `json:"colors,omitempty"`
}

// Zone groups LEDs on a device. Matrix is row-major, Height*Width entries.
type Zone struct {
	Name      string   `json:"name"`
	Type      int32    `json:"type"`
	LEDsMin   uint32   `json:"leds_min"`
	LEDsMax   uint32   `json:"leds_max"`
	LEDsCount uint32   `json:"leds_count"`
	Height    uint32   `json:"height,omitempty"`
	Width     uint32   `json:"width,omitempty"`
	Matrix    []uint32 `json:"matrix,omitempty"`
}

// LED is a single addressable light.
type LED struct {
	Name  string `json:"name"`
	Value uint32 `json:"value"`
}

// Device represents one RGB controller known to the daemon
type Device struct {
	Index       int        `json:"index"`
	Type        DeviceType `json:"type"`
	Name        string     `json:"name"`
	Vendor      string     `json:"vendor,omitempty"`
	Description string     `json:"description,omitempty"`
	Version     string     `json:"version,omitempty"`
	Serial      string     `json:"serial,omitempty"`
	Location    string     `json:"location,omitempty"`
	ActiveMode  int32      `json:"active_mode"`
	Modes       []Mode     `json:"modes"`
	Zones       []Zone     `json:"zones"`
	LEDs        []LED      `json:"leds"`
	Colors      []Color    `json:"colors"`
}

// DeviceState is the part of a device that a profile captures.
type DeviceState struct {
	Name       string  `json:"name"`
	ActiveMode int32   `json:"active_mode"`
	Colors     []Color `json:"colors"`
}

// Snapshot is the lighting state of every device at one moment.
type Snapshot []DeviceState
