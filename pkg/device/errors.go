package device

import "errors"

var (
	// ErrProfileNotFound indicates the daemon has no profile with the given name
	ErrProfileNotFound = errors.New("profile not found")

	// ErrNotConnected indicates the session is closed
	ErrNotConnected = errors.New("not connected")

	// ErrProtocol indicates a malformed or unexpected packet
	ErrProtocol = errors.New("protocol error")

	// ErrUnsupported indicates the negotiated protocol version lacks an operation
	ErrUnsupported = errors.New("operation not supported")
)
