// Package conn implements the Connection described in spec.md §4.4: a
// thin wrapper pairing a dialed or accepted stream with the local/remote
// peer identities and addresses it was established between, plus the
// handshake extension point and an idempotent dispose.
package conn

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cobwebnet/cobweb/address"
	"github.com/cobwebnet/cobweb/transport"
)

// Handshaker is the abstract extension point spec.md §4.4 describes:
// Initiate runs the outbound handshake after a successful dial, Respond
// runs the inbound one after accept. The core treats both as opaque
// futures that either leave the stream usable or fail it. Encryption and
// multiplexing negotiation belong to implementations of this interface,
// not to this package.
type Handshaker interface {
	Initiate(ctx context.Context, c *Connection) error
	Respond(ctx context.Context, c *Connection) error
}

// NoopHandshaker performs no handshake: the raw stream is used as-is. It
// is the default when a Swarm is built without an explicit Handshaker.
type NoopHandshaker struct{}

func (NoopHandshaker) Initiate(context.Context, *Connection) error { return nil }
func (NoopHandshaker) Respond(context.Context, *Connection) error  { return nil }

// Connection pairs a transport.Stream with the peer identities and
// addresses it was established between.
type Connection struct {
	TraceID    uuid.UUID // unique per Connection, useful for correlating log lines across Initiate/Respond/Dispose
	LocalPeer  address.PeerID
	RemotePeer address.PeerID
	LocalAddr  *address.Multiaddr // nil for a dialed connection, whose local address is not recorded
	RemoteAddr address.Multiaddr
	Stream     transport.Stream

	once   sync.Once
	closed chan struct{}
}

// New constructs a Connection with its closed channel in place. Dispose and
// Closed tolerate a nil closed channel, so a Connection built by struct
// literal can still be disposed, though its Closed then always reports
// false.
func New(localPeer, remotePeer address.PeerID, localAddr *address.Multiaddr, remoteAddr address.Multiaddr, stream transport.Stream) *Connection {
	return &Connection{
		TraceID:    uuid.New(),
		LocalPeer:  localPeer,
		RemotePeer: remotePeer,
		LocalAddr:  localAddr,
		RemoteAddr: remoteAddr,
		Stream:     stream,
		closed:     make(chan struct{}),
	}
}

// Dispose closes the underlying stream exactly once, per spec.md §4.4.
// Safe to call multiple times and from multiple goroutines.
func (c *Connection) Dispose() error {
	var err error
	c.once.Do(func() {
		err = c.Stream.Close()
		if c.closed != nil {
			close(c.closed)
		}
	})
	return err
}

// Closed reports whether Dispose has run.
func (c *Connection) Closed() bool {
	if c.closed == nil {
		return false
	}
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
