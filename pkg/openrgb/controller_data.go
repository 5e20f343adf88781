package openrgb

import (
	"encoding/binary"
	"fmt"

	"github.com/urmzd/rgbprofile/pkg/device"
)

// EncodeControllerData serializes a device description for the given
// protocol revision. The leading data_size counts itself.
func EncodeControllerData(d device.Device, version uint32) []byte {
	e := &encoder{buf: make([]byte, 4, 256)}

	e.i32(int32(d.Type))
	e.str(d.Name)
	if version >= 1 {
		e.str(d.Vendor)
	}
	e.str(d.Description)
	e.str(d.Version)
	e.str(d.Serial)
	e.str(d.Location)

	e.u16(uint16(len(d.Modes)))
	e.i32(d.ActiveMode)
	for _, m := range d.Modes {
		e.str(m.Name)
		e.i32(m.Value)
		e.u32(m.Flags)
		e.u32(m.SpeedMin)
		e.u32(m.SpeedMax)
		if version >= 3 {
			e.u32(m.BrightnessMin)
			e.u32(m.BrightnessMax)
		}
		e.u32(m.ColorsMin)
		e.u32(m.ColorsMax)
		e.u32(m.Speed)
		if version >= 3 {
			e.u32(m.Brightness)
		}
		e.u32(m.Direction)
		e.u32(m.ColorMode)
		e.colors(m.Colors)
	}

	e.u16(uint16(len(d.Zones)))
	for _, z := range d.Zones {
		e.str(z.Name)
		e.i32(z.Type)
		e.u32(z.LEDsMin)
		e.u32(z.LEDsMax)
		e.u32(z.LEDsCount)
		if z.Height == 0 || z.Width == 0 {
			e.u16(0)
			continue
		}
		cells := int(z.Height * z.Width)
		e.u16(uint16(8 + 4*cells))
		e.u32(z.Height)
		e.u32(z.Width)
		for i := 0; i < cells; i++ {
			var v uint32 = 0xFFFFFFFF
			if i < len(z.Matrix) {
				v = z.Matrix[i]
			}
			e.u32(v)
		}
	}

	e.u16(uint16(len(d.LEDs)))
	for _, l := range d.LEDs {
		e.str(l.Name)
		e.u32(l.Value)
	}
	e.colors(d.Colors)

	binary.LittleEndian.PutUint32(e.buf[0:4], uint32(len(e.buf)))
	return e.buf
}

// DecodeControllerData parses a REQUEST_CONTROLLER_DATA reply.
func DecodeControllerData(payload []byte, version uint32) (device.Device, error) {
	d := &decoder{data: payload}
	var dev device.Device

	size := d.u32()
	if d.err == nil && int(size) > len(payload) {
		return dev, fmt.Errorf("%w: data_size %d exceeds payload %d", device.ErrProtocol, size, len(payload))
	}

	dev.Type = device.DeviceType(d.i32())
	dev.Name = d.str()
	if version >= 1 {
		dev.Vendor = d.str()
	}
	dev.Description = d.str()
	dev.Version = d.str()
	dev.Serial = d.str()
	dev.Location = d.str()

	numModes := int(d.u16())
	dev.ActiveMode = d.i32()
	dev.Modes = make([]device.Mode, 0, numModes)
	for i := 0; i < numModes && d.err == nil; i++ {
		var m device.Mode
		m.Name = d.str()
		m.Value = d.i32()
		m.Flags = d.u32()
		m.SpeedMin = d.u32()
		m.SpeedMax = d.u32()
		if version >= 3 {
			m.BrightnessMin = d.u32()
			m.BrightnessMax = d.u32()
		}
		m.ColorsMin = d.u32()
		m.ColorsMax = d.u32()
		m.Speed = d.u32()
		if version >= 3 {
			m.Brightness = d.u32()
		}
		m.Direction = d.u32()
		m.ColorMode = d.u32()
		m.Colors = d.colors()
		dev.Modes = append(dev.Modes, m)
	}

	numZones := int(d.u16())
	dev.Zones = make([]device.Zone, 0, numZones)
	for i := 0; i < numZones && d.err == nil; i++ {
		var z device.Zone
		z.Name = d.str()
		z.Type = d.i32()
		z.LEDsMin = d.u32()
		z.LEDsMax = d.u32()
		z.LEDsCount = d.u32()
		matrixLen := int(d.u16())
		if matrixLen > 0 && matrixLen < 8 && d.err == nil {
			d.err = fmt.Errorf("%w: zone %q matrix length %d", device.ErrProtocol, z.Name, matrixLen)
		}
		if matrixLen >= 8 {
			z.Height = d.u32()
			z.Width = d.u32()
			cells := (matrixLen - 8) / 4
			z.Matrix = make([]uint32, 0, cells)
			for j := 0; j < cells && d.err == nil; j++ {
				z.Matrix = append(z.Matrix, d.u32())
			}
		}
		dev.Zones = append(dev.Zones, z)
	}

	numLEDs := int(d.u16())
	dev.LEDs = make([]device.LED, 0, numLEDs)
	for i := 0; i < numLEDs && d.err == nil; i++ {
		dev.LEDs = append(dev.LEDs, device.LED{Name: d.str(), Value: d.u32()})
	}
	dev.Colors = d.colors()

	if d.err != nil {
		return device.Device{}, fmt.Errorf("decode controller data: %w", d.err)
	}
	return dev, nil
}

// EncodeProfileList serializes a REQUEST_PROFILE_LIST reply.
func EncodeProfileList(names []string) []byte {
	e := &encoder{buf: make([]byte, 4, 64)}
	e.u16(uint16(len(names)))
	for _, n := range names {
		e.str(n)
	}
	binary.LittleEndian.PutUint32(e.buf[0:4], uint32(len(e.buf)))
	return e.buf
}

// DecodeProfileList parses a REQUEST_PROFILE_LIST reply.
func DecodeProfileList(payload []byte) ([]string, error) {
	d := &decoder{data: payload}
	d.u32() // data_size
	n := int(d.u16())
	names := make([]string, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		names = append(names, d.str())
	}
	if d.err != nil {
		return nil, fmt.Errorf("decode profile list: %w", d.err)
	}
	return names, nil
}
