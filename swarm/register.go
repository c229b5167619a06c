package swarm

import (
	"github.com/cobwebnet/cobweb/address"
)

// RegisterPeer implements spec.md §4.5.1: it validates addr, checks
// policy, then atomically upserts the peer it identifies into the peer
// table. The upsert is linearizable with respect to other RegisterPeer and
// Connect calls for the same peer-ID because it happens entirely inside
// one critical section guarded by s.mu.
func (s *Swarm) RegisterPeer(addr address.Multiaddr, cancel <-chan struct{}) (Peer, error) {
	if err := s.requireStarted(); err != nil {
		return Peer{}, err
	}

	id, err := address.RequireIdentity(addr)
	if err != nil {
		return Peer{}, ErrMissingIdentity
	}

	s.mu.RLock()
	local := s.localID
	s.mu.RUnlock()
	if id == local {
		return Peer{}, ErrSelfRegistration
	}

	if s.policy.NotAllowed(addr) {
		return Peer{}, ErrPolicyDenied
	}

	select {
	case <-cancel:
		return Peer{}, ErrCancelled
	default:
	}

	s.mu.Lock()
	existing, ok := s.peers[id]
	if !ok {
		existing = Peer{ID: id, Addresses: []address.Multiaddr{addr}}
	} else {
		existing = existing.withAddedAddress(addr)
	}
	s.peers[id] = existing
	peerCount := len(s.peers)
	result := existing.clone()
	s.mu.Unlock()

	s.metrics.setKnownPeers(peerCount)

	return result, nil
}
