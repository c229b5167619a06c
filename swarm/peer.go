package swarm

import "github.com/cobwebnet/cobweb/address"

// Peer is a value type: id, the set of addresses registered for it, and an
// optional connectedAddress, non-nil iff a live stream exists for this
// peer in the Swarm's streams table. Mutation always goes through Swarm
// methods, which atomically replace the map entry under lock; nothing
// outside this package holds a pointer into a live Peer's fields.
type Peer struct {
	ID               address.PeerID
	Addresses        []address.Multiaddr
	ConnectedAddress *address.Multiaddr
}

// clone returns a deep-enough copy for safe return to callers: a new
// backing slice for Addresses and a new pointer for ConnectedAddress, so
// mutating the returned Peer can never affect the Swarm's stored state.
func (p Peer) clone() Peer {
	addrs := make([]address.Multiaddr, len(p.Addresses))
	copy(addrs, p.Addresses)

	var connected *address.Multiaddr
	if p.ConnectedAddress != nil {
		c := *p.ConnectedAddress
		connected = &c
	}

	return Peer{ID: p.ID, Addresses: addrs, ConnectedAddress: connected}
}

// hasAddress reports whether addr is already present in p.Addresses.
func (p Peer) hasAddress(addr address.Multiaddr) bool {
	for _, a := range p.Addresses {
		if a.Equal(addr) {
			return true
		}
	}
	return false
}

// withAddedAddress returns a copy of p with addr appended, unless already
// present, in which case p.Addresses is returned unchanged.
func (p Peer) withAddedAddress(addr address.Multiaddr) Peer {
	if p.hasAddress(addr) {
		return p
	}
	next := p.clone()
	next.Addresses = append(next.Addresses, addr)
	return next
}
