package openrgb

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/urmzd/rgbprofile/pkg/device"
)

// encoder appends little-endian fields to a growing buffer.
type encoder struct {
	buf []byte
}

func (e *encoder) u16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *encoder) i32(v int32)  { e.u32(uint32(v)) }

// str writes a u16 length that counts the NUL, then the bytes and the NUL.
func (e *encoder) str(s string) {
	e.u16(uint16(len(s) + 1))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
}

func (e *encoder) colors(cs []device.Color) {
	e.u16(uint16(len(cs)))
	for _, c := range cs {
		e.buf = append(e.buf, c.Red, c.Green, c.Blue, 0)
	}
}

// decoder reads little-endian fields and latches the first error.
type decoder struct {
	data []byte
	off  int
	err  error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.data)-d.off < n {
		d.err = fmt.Errorf("%w: short payload at offset %d (need %d, have %d)",
			device.ErrProtocol, d.off, n, len(d.data)-d.off)
		return nil
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *decoder) u32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) i32() int32 { return int32(d.u32()) }

func (d *decoder) str() string {
	b := d.take(int(d.u16()))
	return strings.TrimRight(string(b), "\x00")
}

func (d *decoder) colors() []device.Color {
	n := int(d.u16())
	cs := make([]device.Color, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		b := d.take(4)
		if b == nil {
			break
		}
		cs = append(cs, device.Color{Red: b[0], Green: b[1], Blue: b[2]})
	}
	return cs
}
