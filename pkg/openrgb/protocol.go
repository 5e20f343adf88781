package openrgb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/urmzd/rgbprofile/pkg/device"
)

// SDK packet IDs
const (
	PacketRequestControllerCount uint32 = 0
	PacketRequestControllerData  uint32 = 1
	PacketRequestProtocolVersion uint32 = 40
	PacketSetClientName          uint32 = 50
	PacketDeviceListUpdated      uint32 = 100
	PacketRequestProfileList     uint32 = 150
	PacketRequestSaveProfile     uint32 = 151
	PacketRequestLoadProfile     uint32 = 152
	PacketRequestDeleteProfile   uint32 = 153
)

const (
	// HeaderSize is magic(4) + device(4) + id(4) + size(4)
	HeaderSize = 16

	// ProtocolVersion is the highest SDK protocol revision this package speaks.
	ProtocolVersion uint32 = 3

	// Profile requests were added in protocol revision 2.
	profileMinVersion uint32 = 2

	maxPayload = 16 << 20

	// Every other count on the wire is a u16.
	maxControllers = 1<<16 - 1
)

var magic = [4]byte{'O', 'R', 'G', 'B'}

// Header is the fixed prefix of every SDK packet.
type Header struct {
	Device uint32
	ID     uint32
	Size   uint32
}

// MarshalBinary encodes the header in wire order.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Device)
	binary.LittleEndian.PutUint32(buf[8:12], h.ID)
	binary.LittleEndian.PutUint32(buf[12:16], h.Size)
	return buf, nil
}

// UnmarshalBinary decodes a header, rejecting a bad magic or an oversize payload.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header is %d bytes", device.ErrProtocol, len(data))
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return fmt.Errorf("%w: bad magic %q", device.ErrProtocol, data[0:4])
	}
	h.Device = binary.LittleEndian.Uint32(data[4:8])
	h.ID = binary.LittleEndian.Uint32(data[8:12])
	h.Size = binary.LittleEndian.Uint32(data[12:16])
	if h.Size > maxPayload {
		return fmt.Errorf("%w: payload size %d exceeds limit", device.ErrProtocol, h.Size)
	}
	return nil
}

// WritePacket writes header and payload in a single Write call.
func WritePacket(w io.Writer, dev, id uint32, payload []byte) error {
	hdr, _ := Header{Device: dev, ID: id, Size: uint32(len(payload))}.MarshalBinary()
	_, err := w.Write(append(hdr, payload...))
	return err
}

// ReadPacket reads one full packet.
func ReadPacket(r io.Reader) (Header, []byte, error) {
	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Header{}, nil, err
	}
	var h Header
	if err := h.UnmarshalBinary(raw[:]); err != nil {
		return Header{}, nil, err
	}
	payload := make([]byte, h.Size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Header{}, nil, fmt.Errorf("read payload for packet %d: %w", h.ID, err)
	}
	return h, payload, nil
}

// EncodeName encodes a bare NUL-terminated string, the payload format of
// SetClientName and the profile requests.
func EncodeName(name string) []byte {
	buf := make([]byte, 0, len(name)+1)
	buf = append(buf, name...)
	return append(buf, 0)
}

// DecodeName strips the terminator from a bare NUL-terminated payload.
func DecodeName(payload []byte) string {
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		return string(payload[:i])
	}
	return string(payload)
}

// EncodeUint32 encodes a single little-endian uint32 payload.
func EncodeUint32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

// DecodeUint32 decodes a single little-endian uint32 payload.
func DecodeUint32(payload []byte) (uint32, error) {
	if len(payload) < 4 {
		return 0, fmt.Errorf("%w: want 4 bytes, got %d", device.ErrProtocol, len(payload))
	}
	return binary.LittleEndian.Uint32(payload), nil
}
