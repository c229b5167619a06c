package swarm

import (
	"context"
	"errors"

	"github.com/cobwebnet/cobweb/address"
	"github.com/cobwebnet/cobweb/conn"
	"github.com/cobwebnet/cobweb/transport"
)

// Connect implements spec.md §4.5.2. It returns the registered Peer once a
// transport connection is established, (nil, nil) if cancel fires while
// concrete addresses are being dialed, or (nil, *UnreachableError) once
// every concrete address has been tried without success. A cancel that has
// already fired when the peer is registered yields (nil, ErrCancelled), and
// a resolver failure, including one caused by cancellation, is reported as
// an *UnreachableError.
func (s *Swarm) Connect(addr address.Multiaddr, cancel <-chan struct{}) (*Peer, error) {
	start := s.clock.Now()
	peer, err := s.RegisterPeer(addr, cancel)
	if err != nil {
		return nil, err
	}
	if peer.ConnectedAddress != nil {
		return &peer, nil
	}

	ctx, stop := contextFromCancel(cancel)
	defer stop()

	concrete, err := s.resolver.Resolve(ctx, addr)
	if err != nil || len(concrete) == 0 {
		return nil, &UnreachableError{PeerID: peer.ID, Attempts: []connectFailure{{Addr: addr, Cause: errOrNoKnownAddress(err)}}}
	}

	var attempts []connectFailure
	for _, candidate := range concrete {
		select {
		case <-cancel:
			return nil, nil
		default:
		}

		proto, ok := candidate.FirstRegisteredTransport(s.registry.IsRegistered)
		if !ok {
			attempts = append(attempts, connectFailure{Addr: candidate, Cause: ErrMissingTransport})
			continue
		}

		tr, err := s.registry.Lookup(proto)
		if err != nil {
			attempts = append(attempts, connectFailure{Addr: candidate, Cause: err})
			continue
		}

		stream, err := s.dialOne(ctx, tr, candidate)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, nil
			}
			attempts = append(attempts, connectFailure{Addr: candidate, Cause: err})
			s.metrics.observeDial("failure", 0)
			continue
		}

		c := conn.New(s.localID, peer.ID, nil, candidate, stream)
		log.Debug("dialed", "trace", c.TraceID.String(), "addr", candidate.String())
		handshakeCtx, cancelHandshake := context.WithTimeout(ctx, s.config.NewStreamTimeout)
		err = s.handshaker.Initiate(handshakeCtx, c)
		cancelHandshake()
		if err != nil {
			c.Dispose()
			attempts = append(attempts, connectFailure{Addr: candidate, Cause: err})
			s.metrics.observeDial("failure", 0)
			continue
		}

		updated := s.markConnected(peer.ID, candidate, stream)
		s.metrics.observeDial("success", s.clock.Now().Sub(start).Seconds())
		return &updated, nil
	}

	return nil, &UnreachableError{PeerID: peer.ID, Attempts: attempts}
}

// dialOne bounds one transport.Connect attempt by the Swarm's dial
// semaphore and per-attempt timeout.
func (s *Swarm) dialOne(ctx context.Context, tr transport.Transport, addr address.Multiaddr) (transport.Stream, error) {
	if err := s.dialSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.dialSem.Release(1)

	dialCtx, cancel := context.WithTimeout(ctx, s.config.DialTimeout)
	defer cancel()

	return tr.Connect(dialCtx, addr)
}

// markConnected atomically sets peer.ConnectedAddress and stores stream in
// the streams table, returning the updated Peer. This is the single write
// point for "connected" state, satisfying ordering guarantee (b) in
// spec.md §5: connectedAddress is observable-non-null before Connect
// returns.
//
// Two concurrent successful dials for the same peer-ID (or a dial racing
// an inbound accept) can both reach here; whichever loses the race to
// write streams[id] last wins, and the other's stream is orphaned. Per
// spec.md §5, an orphaned stream must be disposed when detected, so the
// previous entry, if any, is closed once the lock is released.
func (s *Swarm) markConnected(id address.PeerID, addr address.Multiaddr, stream transport.Stream) Peer {
	s.mu.Lock()
	p := s.peers[id]
	connected := addr
	p.ConnectedAddress = &connected
	p = p.withAddedAddress(addr)
	s.peers[id] = p
	orphaned := s.streams[id]
	s.streams[id] = stream
	connectedCount := len(s.streams)
	result := p.clone()
	s.mu.Unlock()

	closeOrphanedStream(id, orphaned)
	s.metrics.setConnectedPeers(connectedCount)
	return result
}

// closeOrphanedStream disposes a stream that a table write just replaced,
// if one was present. Never called under s.mu: Close is I/O and must not
// run inside a critical section.
func closeOrphanedStream(id address.PeerID, stream transport.Stream) {
	if stream == nil {
		return
	}
	if err := stream.Close(); err != nil {
		log.Warn("error closing orphaned stream", "peer", id.String(), "error", err)
	}
}

// contextFromCancel adapts a cancellation channel to a context.Context so
// address.Resolver and transport.Transport, both context-based contracts,
// can observe the same signal Connect's caller passed in.
func contextFromCancel(cancel <-chan struct{}) (context.Context, func()) {
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		select {
		case <-cancel:
			stop()
		case <-done:
		}
	}()
	return ctx, func() {
		close(done)
		stop()
	}
}

func errOrNoKnownAddress(err error) error {
	if err != nil {
		return err
	}
	return errNoKnownAddress
}

var errNoKnownAddress = &noKnownAddressError{}

type noKnownAddressError struct{}

func (*noKnownAddressError) Error() string { return "swarm: resolver returned no addresses" }
