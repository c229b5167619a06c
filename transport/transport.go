// Package transport defines the transport abstraction described in
// spec.md §4.3: a protocol-name-keyed registry of Transport
// implementations, each responsible for dialing and listening on one wire
// protocol.
package transport

import (
	"context"
	"io"

	"github.com/cobwebnet/cobweb/address"
)

// Stream is a duplex byte stream between two peers. A concrete Transport's
// Connect and Listen hand these to the Swarm, which wraps them in a
// Connection and runs the handshake extension point over them.
type Stream = io.ReadWriteCloser

// AcceptFunc is invoked once per inbound connection a Listen call's accept
// loop receives, carrying the new stream and the local/remote addresses it
// was accepted on.
type AcceptFunc func(stream Stream, local, remote address.Multiaddr)

// Transport dials and accepts connections for the one protocol it was
// registered under.
//
// Connect fails with ErrUnavailable if this transport cannot service addr,
// context.Canceled if ctx is cancelled first, or a wrapped error otherwise.
//
// Listen returns the effective bound address (e.g. with a requested port 0
// resolved to the one actually bound) and then runs a detached accept loop
// delivering (stream, local, remote) triples to onAccept until cancel
// fires. Listen itself must not block past the point the listening socket
// is ready.
type Transport interface {
	Connect(ctx context.Context, addr address.Multiaddr) (Stream, error)
	Listen(addr address.Multiaddr, onAccept AcceptFunc, cancel <-chan struct{}) (address.Multiaddr, error)
}
