package openrgb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/rgbprofile/pkg/device"
)

// Connection defaults
const (
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 6742
	DefaultClientName = "ProfileChanger"
)

// Servers older than revision 1 never answer the version request.
const versionProbeTimeout = time.Second

var _ device.Controller = (*Client)(nil)

// Client is a session with an OpenRGB SDK server.
// It is used by one goroutine at a time; Close may be called from any goroutine.
type Client struct {
	conn    net.Conn
	name    string
	version uint32

	devices []device.Device
	stale   bool

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Client at Dial time.
type Option func(*Client)

// WithClientName sets the name announced to the server.
func WithClientName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

// Dial connects to the server at addr, negotiates the protocol revision and
// announces the client name.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	c := &Client{
		conn:  conn,
		name:  DefaultClientName,
		stale: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.handshake(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug().
		Str("addr", addr).
		Str("client", c.name).
		Uint32("protocol", c.version).
		Msg("OpenRGB session opened")

	return c, nil
}

// handshake negotiates the protocol revision and sets the client name.
func (c *Client) handshake(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	reply, err := c.call(probeCtx, 0, PacketRequestProtocolVersion, EncodeUint32(ProtocolVersion))
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded) && ctx.Err() == nil:
		// A revision 0 server ignores the request.
		c.version = 0
	case err != nil:
		return fmt.Errorf("negotiate protocol version: %w", err)
	default:
		server, err := DecodeUint32(reply)
		if err != nil {
			return fmt.Errorf("negotiate protocol version: %w", err)
		}
		c.version = min(server, ProtocolVersion)
	}

	if err := c.send(ctx, 0, PacketSetClientName, EncodeName(c.name)); err != nil {
		return fmt.Errorf("set client name: %w", err)
	}
	return nil
}

// ProtocolVersion returns the negotiated protocol revision.
func (c *Client) ProtocolVersion() uint32 {
	return c.version
}

// Devices returns every controller on the server, refreshing the cache when
// the server announced a device list change.
func (c *Client) Devices(ctx context.Context) ([]device.Device, error) {
	if !c.stale {
		return c.devices, nil
	}

	// A notification read during the refresh marks the cache stale again.
	c.stale = false

	reply, err := c.call(ctx, 0, PacketRequestControllerCount, nil)
	if err != nil {
		c.stale = true
		return nil, fmt.Errorf("request controller count: %w", err)
	}
	count, err := DecodeUint32(reply)
	if err != nil {
		c.stale = true
		return nil, fmt.Errorf("request controller count: %w", err)
	}
	if count > maxControllers {
		c.stale = true
		return nil, fmt.Errorf("%w: controller count %d", device.ErrProtocol, count)
	}

	devices := make([]device.Device, 0, count)
	for i := uint32(0); i < count; i++ {
		reply, err := c.call(ctx, i, PacketRequestControllerData, EncodeUint32(c.version))
		if err != nil {
			c.stale = true
			return nil, fmt.Errorf("request controller %d: %w", i, err)
		}
		d, err := DecodeControllerData(reply, c.version)
		if err != nil {
			c.stale = true
			return nil, fmt.Errorf("controller %d: %w", i, err)
		}
		d.Index = int(i)
		devices = append(devices, d)
	}

	c.devices = devices
	return devices, nil
}

// DevicesByType returns the controllers of the given category.
func (c *Client) DevicesByType(ctx context.Context, t device.DeviceType) ([]device.Device, error) {
	all, err := c.Devices(ctx)
	if err != nil {
		return nil, err
	}
	var matched []device.Device
	for _, d := range all {
		if d.Type == t {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

// Profiles returns the saved profile names in server order.
func (c *Client) Profiles(ctx context.Context) ([]string, error) {
	if err := c.requireProfiles(); err != nil {
		return nil, err
	}
	reply, err := c.call(ctx, 0, PacketRequestProfileList, nil)
	if err != nil {
		return nil, fmt.Errorf("request profile list: %w", err)
	}
	return DecodeProfileList(reply)
}

// LoadProfile activates a saved profile. The server never acknowledges a
// load, so the name is checked against the profile list first.
func (c *Client) LoadProfile(ctx context.Context, name string) error {
	if err := c.ensureProfile(ctx, name); err != nil {
		return err
	}
	return c.send(ctx, 0, PacketRequestLoadProfile, EncodeName(name))
}

// SaveProfile stores the current lighting state under name, replacing any
// profile with the same name.
func (c *Client) SaveProfile(ctx context.Context, name string) error {
	if err := c.requireProfiles(); err != nil {
		return err
	}
	return c.send(ctx, 0, PacketRequestSaveProfile, EncodeName(name))
}

// DeleteProfile removes a saved profile.
func (c *Client) DeleteProfile(ctx context.Context, name string) error {
	if err := c.ensureProfile(ctx, name); err != nil {
		return err
	}
	return c.send(ctx, 0, PacketRequestDeleteProfile, EncodeName(name))
}

// Close ends the session.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.conn.Close()
		log.Debug().Msg("OpenRGB session closed")
	})
	return c.closeErr
}

func (c *Client) requireProfiles() error {
	if c.version < profileMinVersion {
		return fmt.Errorf("%w: profiles need protocol %d, server speaks %d",
			device.ErrUnsupported, profileMinVersion, c.version)
	}
	return nil
}

func (c *Client) ensureProfile(ctx context.Context, name string) error {
	names, err := c.Profiles(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(names, name) {
		return fmt.Errorf("%w: %q", device.ErrProfileNotFound, name)
	}
	return nil
}

// send writes one packet that has no reply.
func (c *Client) send(ctx context.Context, dev, id uint32, payload []byte) error {
	if c.closed.Load() {
		return device.ErrNotConnected
	}
	if err := c.setDeadline(ctx); err != nil {
		return err
	}

	log.Debug().
		Uint32("device", dev).
		Uint32("id", id).
		Int("size", len(payload)).
		Msg("OpenRGB TX")

	if err := WritePacket(c.conn, dev, id, payload); err != nil {
		return c.wrapIOError(fmt.Errorf("write packet %d: %w", id, err))
	}
	return nil
}

// call writes one packet and waits for the reply with the same ID.
// Device list notifications that arrive first are consumed and mark the
// device cache stale.
func (c *Client) call(ctx context.Context, dev, id uint32, payload []byte) ([]byte, error) {
	if err := c.send(ctx, dev, id, payload); err != nil {
		return nil, err
	}

	for {
		hdr, reply, err := ReadPacket(c.conn)
		if err != nil {
			return nil, c.wrapIOError(fmt.Errorf("read reply to packet %d: %w", id, err))
		}

		log.Debug().
			Uint32("device", hdr.Device).
			Uint32("id", hdr.ID).
			Uint32("size", hdr.Size).
			Msg("OpenRGB RX")

		switch hdr.ID {
		case id:
			return reply, nil
		case PacketDeviceListUpdated:
			c.stale = true
		default:
			return nil, fmt.Errorf("%w: expected reply %d, got packet %d", device.ErrProtocol, id, hdr.ID)
		}
	}
}

func (c *Client) setDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, _ := ctx.Deadline()
	return c.conn.SetDeadline(deadline)
}

// wrapIOError reports reads and writes on a closed session as ErrNotConnected.
func (c *Client) wrapIOError(err error) error {
	if c.closed.Load() {
		return fmt.Errorf("%w: %v", device.ErrNotConnected, err)
	}
	return err
}
