package swarm

import "github.com/cobwebnet/cobweb/address"

// Disconnect implements spec.md §4.5.3. It is idempotent and never fails:
// an address with no identity segment, an unknown peer, or a peer that is
// already disconnected are all silently accepted as no-ops.
func (s *Swarm) Disconnect(addr address.Multiaddr, _ <-chan struct{}) {
	id, err := address.RequireIdentity(addr)
	if err != nil {
		return
	}
	s.disconnectPeerID(id)
}

// disconnectPeerID removes and disposes the peer's stream, if any,
// leaving the Peer itself (and its known addresses) in the peer table.
func (s *Swarm) disconnectPeerID(id address.PeerID) {
	s.mu.Lock()
	stream, hasStream := s.streams[id]
	if !hasStream {
		s.mu.Unlock()
		return
	}
	delete(s.streams, id)
	if p, ok := s.peers[id]; ok {
		p.ConnectedAddress = nil
		s.peers[id] = p
	}
	connectedCount := len(s.streams)
	s.mu.Unlock()

	if err := stream.Close(); err != nil {
		log.Warn("error closing disconnected stream", "peer", id.String(), "error", err)
	}
	s.metrics.setConnectedPeers(connectedCount)
}
