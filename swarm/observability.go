package swarm

import (
	"github.com/cobwebnet/cobweb/address"
	"github.com/cobwebnet/cobweb/policy"
)

// KnownPeers returns a snapshot of every Peer currently in the peer table,
// per spec.md §4.5.7.
func (s *Swarm) KnownPeers() []Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Peer, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, p.clone())
	}
	return out
}

// KnownPeerAddresses returns the flattened addresses of every known peer.
func (s *Swarm) KnownPeerAddresses() []address.Multiaddr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []address.Multiaddr
	for _, p := range s.peers {
		out = append(out, p.Addresses...)
	}
	return out
}

// IsAllowed delegates to the Swarm's policy evaluator.
func (s *Swarm) IsAllowed(addr address.Multiaddr) bool {
	return s.policy.Allowed(addr)
}

// IsNotAllowed is the negation of IsAllowed.
func (s *Swarm) IsNotAllowed(addr address.Multiaddr) bool {
	return s.policy.NotAllowed(addr)
}

// AllowList exposes the Swarm's allow-list for direct mutation.
func (s *Swarm) AllowList() *policy.List {
	return s.policy.Allow
}

// DenyList exposes the Swarm's deny-list for direct mutation.
func (s *Swarm) DenyList() *policy.List {
	return s.policy.Deny
}
