package transport

import "errors"

var (
	// ErrUnavailable is returned by Connect when the transport cannot
	// service the given address at all (wrong protocol segment, etc).
	ErrUnavailable = errors.New("transport: address not serviceable by this transport")

	// ErrNoTransport is returned by Registry.Lookup when no transport is
	// registered for a protocol name.
	ErrNoTransport = errors.New("transport: no transport registered for protocol")

	// ErrAlreadyRegistered is returned by Registry.Register when a
	// protocol name is registered twice.
	ErrAlreadyRegistered = errors.New("transport: protocol already registered")
)
