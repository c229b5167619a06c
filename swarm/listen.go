package swarm

import (
	"context"

	"github.com/cobwebnet/cobweb/address"
	"github.com/cobwebnet/cobweb/conn"
	"github.com/cobwebnet/cobweb/transport"
)

// StartListening implements spec.md §4.5.4. Unlike the spec's literal text,
// which records a missing transport silently, this Swarm fails fast with
// ErrMissingTransport: a listener that never binds is indistinguishable
// from a hung one, and an operator needs to know immediately.
func (s *Swarm) StartListening(addr address.Multiaddr) (address.Multiaddr, error) {
	if err := s.requireStarted(); err != nil {
		return address.Multiaddr{}, err
	}

	key := addr.String()

	s.mu.Lock()
	if _, exists := s.listeners[key]; exists {
		s.mu.Unlock()
		return address.Multiaddr{}, ErrAlreadyListening
	}
	cancel := make(chan struct{})
	s.listeners[key] = listenerEntry{cancel: cancel}
	s.localAddrs = appendIfAbsent(s.localAddrs, addr)
	s.mu.Unlock()

	proto, ok := addr.FirstRegisteredTransport(s.registry.IsRegistered)
	if !ok {
		s.mu.Lock()
		delete(s.listeners, key)
		s.mu.Unlock()
		return address.Multiaddr{}, ErrMissingTransport
	}

	tr, err := s.registry.Lookup(proto)
	if err != nil {
		s.mu.Lock()
		delete(s.listeners, key)
		s.mu.Unlock()
		return address.Multiaddr{}, ErrMissingTransport
	}

	bound, err := tr.Listen(addr, s.onAccept, cancel)
	if err != nil {
		s.mu.Lock()
		delete(s.listeners, key)
		s.mu.Unlock()
		return address.Multiaddr{}, err
	}

	log.Info("listening", "addr", bound.String())
	return bound.WithPeerID(s.localID), nil
}

// StopListening implements spec.md §4.5.5: it fires the listener's
// cancellation signal and removes both the listener entry and the
// corresponding entry in localAddrs. Never fails; silent on an unknown
// addr.
func (s *Swarm) StopListening(addr address.Multiaddr) {
	key := addr.String()

	s.mu.Lock()
	entry, ok := s.listeners[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.listeners, key)
	s.localAddrs = removeAddr(s.localAddrs, addr)
	s.mu.Unlock()

	close(entry.cancel)
}

// onAccept implements spec.md §4.5.6. It runs the responder handshake,
// then — mirroring what a successful Connect does — registers the remote
// peer, sets its connectedAddress and stores its stream, provided the
// handshake populated the connection's RemotePeer. A handshaker that
// leaves RemotePeer empty (the NoopHandshaker default) opts the accepted
// connection out of peer-table registration entirely; a higher layer that
// knows how to authenticate the remote peer is expected to register it
// itself via RegisterPeer/Connect.
func (s *Swarm) onAccept(stream transport.Stream, local, remote address.Multiaddr) {
	c := conn.New(s.localID, "", &local, remote, stream)
	log.Debug("accepted", "trace", c.TraceID.String(), "remote", remote.String())

	handshakeCtx, cancelHandshake := context.WithTimeout(context.Background(), s.config.NewStreamTimeout)
	err := s.handshaker.Respond(handshakeCtx, c)
	cancelHandshake()
	if err != nil {
		log.Warn("inbound handshake failed", "remote", remote.String(), "error", err)
		c.Dispose()
		s.metrics.observeAccept("handshake_failed")
		return
	}

	if c.RemotePeer.Empty() {
		s.metrics.observeAccept("unauthenticated")
		return
	}

	identified := remote.WithPeerID(c.RemotePeer)
	if s.policy.NotAllowed(identified) {
		log.Warn("inbound peer denied by policy", "remote", identified.String())
		c.Dispose()
		s.metrics.observeAccept("policy_denied")
		return
	}

	s.mu.Lock()
	p, ok := s.peers[c.RemotePeer]
	if !ok {
		p = Peer{ID: c.RemotePeer}
	}
	p = p.withAddedAddress(identified)
	connected := identified
	p.ConnectedAddress = &connected
	s.peers[c.RemotePeer] = p
	orphaned := s.streams[c.RemotePeer]
	s.streams[c.RemotePeer] = stream
	peerCount, connectedCount := len(s.peers), len(s.streams)
	s.mu.Unlock()

	closeOrphanedStream(c.RemotePeer, orphaned)
	s.metrics.setKnownPeers(peerCount)
	s.metrics.setConnectedPeers(connectedCount)
	s.metrics.observeAccept("success")
}

func appendIfAbsent(addrs []address.Multiaddr, addr address.Multiaddr) []address.Multiaddr {
	for _, a := range addrs {
		if a.Equal(addr) {
			return addrs
		}
	}
	return append(addrs, addr)
}

func removeAddr(addrs []address.Multiaddr, addr address.Multiaddr) []address.Multiaddr {
	out := addrs[:0]
	for _, a := range addrs {
		if !a.Equal(addr) {
			out = append(out, a)
		}
	}
	return out
}
