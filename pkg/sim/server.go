package sim

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/rgbprofile/pkg/device"
	"github.com/urmzd/rgbprofile/pkg/openrgb"
)

// Server is a stateful stand-in for an OpenRGB SDK server. It holds a fixed
// device list whose active modes and colors change as profiles load.
type Server struct {
	store   ProfileStore
	version uint32
	hold    <-chan struct{}

	devices   []device.Device
	devicesMu sync.RWMutex

	sessions   map[*session]struct{}
	sessionsMu sync.Mutex

	listener net.Listener
	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

type session struct {
	id       string
	conn     net.Conn
	name     string
	version  uint32
	openedAt time.Time
	writeMu  sync.Mutex
}

// SessionInfo describes one open client session.
type SessionInfo struct {
	ID       string
	Client   string
	Remote   string
	OpenedAt time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithProtocolVersion caps the protocol revision the server advertises.
func WithProtocolVersion(v uint32) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithHold makes the server wait for hold to be closed or receive before
// answering a profile list request.
func WithHold(hold <-chan struct{}) Option {
	return func(s *Server) {
		s.hold = hold
	}
}

// NewServer creates a server over devices, persisting profiles in store.
func NewServer(store ProfileStore, devices []device.Device, opts ...Option) *Server {
	s := &Server{
		store:    store,
		version:  openrgb.ProtocolVersion,
		devices:  cloneDevices(devices),
		sessions: make(map[*session]struct{}),
		done:     make(chan struct{}),
	}
	for i := range s.devices {
		s.devices[i].Index = i
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the SDK port. Use ":0" to pick a free port.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	log.Info().Str("addr", ln.Addr().String()).Uint32("protocol", s.version).Msg("SDK server listening")
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts sessions until Close. It returns nil after Close.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			return fmt.Errorf("accept: %w", err)
		}

		sess := &session{id: uuid.New().String(), conn: conn, openedAt: time.Now()}
		s.sessionsMu.Lock()
		select {
		case <-s.done:
			s.sessionsMu.Unlock()
			_ = conn.Close()
			return nil
		default:
		}
		s.sessions[sess] = struct{}{}
		s.wg.Add(1)
		s.sessionsMu.Unlock()

		go s.handleSession(sess)
	}
}

// ListenAndServe binds addr and serves until Close.
func (s *Server) ListenAndServe(addr string) error {
	if err := s.Listen(addr); err != nil {
		return err
	}
	return s.Serve()
}

// Close stops accepting, drops every session and waits for handlers to exit.
func (s *Server) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			err = s.listener.Close()
		}
		s.sessionsMu.Lock()
		for sess := range s.sessions {
			_ = sess.conn.Close()
		}
		s.sessionsMu.Unlock()
		s.wg.Wait()
	})
	return err
}

// Sessions returns the number of open client sessions.
func (s *Server) Sessions() int {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	return len(s.sessions)
}

// Clients returns the announced names of open sessions.
func (s *Server) Clients() []string {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	names := make([]string, 0, len(s.sessions))
	for sess := range s.sessions {
		names = append(names, sess.name)
	}
	slices.Sort(names)
	return names
}

// SessionInfo lists open sessions, oldest first.
func (s *Server) SessionInfo() []SessionInfo {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	infos := make([]SessionInfo, 0, len(s.sessions))
	for sess := range s.sessions {
		infos = append(infos, SessionInfo{
			ID:       sess.id,
			Client:   sess.name,
			Remote:   sess.conn.RemoteAddr().String(),
			OpenedAt: sess.openedAt,
		})
	}
	slices.SortFunc(infos, func(a, b SessionInfo) int {
		return a.OpenedAt.Compare(b.OpenedAt)
	})
	return infos
}

// Devices returns a copy of the current device state.
func (s *Server) Devices() []device.Device {
	s.devicesMu.RLock()
	defer s.devicesMu.RUnlock()
	return cloneDevices(s.devices)
}

// Profiles lists the saved profile names.
func (s *Server) Profiles(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// NotifyDeviceListUpdated sends the device list change notification to
// every open session.
func (s *Server) NotifyDeviceListUpdated() {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	for sess := range s.sessions {
		if err := sess.write(0, openrgb.PacketDeviceListUpdated, nil); err != nil {
			log.Debug().Err(err).Msg("Device list notification failed")
		}
	}
}

func (s *Server) handleSession(sess *session) {
	defer s.wg.Done()
	defer func() {
		_ = sess.conn.Close()
		s.sessionsMu.Lock()
		delete(s.sessions, sess)
		s.sessionsMu.Unlock()
		log.Info().Str("session", sess.id).Str("client", sess.name).Msg("Session closed")
	}()

	log.Info().
		Str("session", sess.id).
		Str("remote", sess.conn.RemoteAddr().String()).
		Msg("Session opened")

	for {
		hdr, payload, err := openrgb.ReadPacket(sess.conn)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Debug().Err(err).Msg("Session read ended")
			}
			return
		}
		if err := s.handlePacket(sess, hdr, payload); err != nil {
			log.Warn().Err(err).Uint32("id", hdr.ID).Msg("Packet handling failed")
			return
		}
	}
}

func (s *Server) handlePacket(sess *session, hdr openrgb.Header, payload []byte) error {
	ctx := context.Background()

	switch hdr.ID {
	case openrgb.PacketRequestProtocolVersion:
		if v, err := openrgb.DecodeUint32(payload); err == nil {
			sess.version = min(v, s.version)
		}
		return sess.write(0, hdr.ID, openrgb.EncodeUint32(s.version))

	case openrgb.PacketSetClientName:
		s.sessionsMu.Lock()
		sess.name = openrgb.DecodeName(payload)
		s.sessionsMu.Unlock()
		log.Info().Str("client", sess.name).Msg("Client named")
		return nil

	case openrgb.PacketRequestControllerCount:
		s.devicesMu.RLock()
		n := len(s.devices)
		s.devicesMu.RUnlock()
		return sess.write(0, hdr.ID, openrgb.EncodeUint32(uint32(n)))

	case openrgb.PacketRequestControllerData:
		version := sess.version
		if v, err := openrgb.DecodeUint32(payload); err == nil {
			version = min(v, s.version)
		}
		s.devicesMu.RLock()
		if int(hdr.Device) >= len(s.devices) {
			s.devicesMu.RUnlock()
			log.Warn().Uint32("device", hdr.Device).Msg("Controller index out of range")
			return nil
		}
		data := openrgb.EncodeControllerData(s.devices[hdr.Device], version)
		s.devicesMu.RUnlock()
		return sess.write(hdr.Device, hdr.ID, data)

	case openrgb.PacketRequestProfileList:
		if s.hold != nil {
			if err := s.waitHold(sess); err != nil {
				return err
			}
		}
		names, err := s.store.List(ctx)
		if err != nil {
			return fmt.Errorf("list profiles: %w", err)
		}
		return sess.write(0, hdr.ID, openrgb.EncodeProfileList(names))

	case openrgb.PacketRequestSaveProfile:
		name := openrgb.DecodeName(payload)
		if err := s.store.Save(ctx, name, s.snapshot()); err != nil {
			log.Error().Err(err).Str("profile", name).Msg("Save profile failed")
			return nil
		}
		log.Info().Str("profile", name).Msg("Profile saved")
		return nil

	case openrgb.PacketRequestLoadProfile:
		name := openrgb.DecodeName(payload)
		snap, err := s.store.Get(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("profile", name).Msg("Load profile failed")
			return nil
		}
		s.apply(snap)
		log.Info().Str("profile", name).Msg("Profile loaded")
		return nil

	case openrgb.PacketRequestDeleteProfile:
		name := openrgb.DecodeName(payload)
		if err := s.store.Delete(ctx, name); err != nil && !errors.Is(err, device.ErrProfileNotFound) {
			log.Error().Err(err).Str("profile", name).Msg("Delete profile failed")
			return nil
		}
		log.Info().Str("profile", name).Msg("Profile deleted")
		return nil

	default:
		log.Debug().Uint32("id", hdr.ID).Msg("Ignoring unsupported packet")
		return nil
	}
}

// waitHold blocks until the hold channel fires, the server stops or the
// client hangs up. The client must not send while it waits for the reply.
func (s *Server) waitHold(sess *session) error {
	gone := make(chan struct{})
	go func() {
		var b [1]byte
		_, _ = sess.conn.Read(b[:])
		close(gone)
	}()

	select {
	case <-s.hold:
		_ = sess.conn.SetReadDeadline(time.Now())
		<-gone
		return sess.conn.SetReadDeadline(time.Time{})
	case <-gone:
		return net.ErrClosed
	case <-s.done:
		return net.ErrClosed
	}
}

// snapshot captures the active mode and colors of every device.
func (s *Server) snapshot() device.Snapshot {
	s.devicesMu.RLock()
	defer s.devicesMu.RUnlock()
	snap := make(device.Snapshot, 0, len(s.devices))
	for _, d := range s.devices {
		snap = append(snap, device.DeviceState{
			Name:       d.Name,
			ActiveMode: d.ActiveMode,
			Colors:     slices.Clone(d.Colors),
		})
	}
	return snap
}

// apply restores a snapshot onto devices matched by position and name.
// Entries for devices that are no longer present are skipped.
func (s *Server) apply(snap device.Snapshot) {
	s.devicesMu.Lock()
	defer s.devicesMu.Unlock()
	for i, st := range snap {
		if i >= len(s.devices) || s.devices[i].Name != st.Name {
			continue
		}
		d := &s.devices[i]
		if st.ActiveMode >= 0 && int(st.ActiveMode) < len(d.Modes) {
			d.ActiveMode = st.ActiveMode
		}
		if len(st.Colors) == len(d.Colors) {
			copy(d.Colors, st.Colors)
		}
	}
}

// cloneDevices copies the fields that loading a profile mutates.
func cloneDevices(ds []device.Device) []device.Device {
	out := slices.Clone(ds)
	for i := range out {
		out[i].Colors = slices.Clone(out[i].Colors)
	}
	return out
}

func (sess *session) write(dev, id uint32, payload []byte) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	return openrgb.WritePacket(sess.conn, dev, id, payload)
}
