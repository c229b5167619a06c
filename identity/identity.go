// Package identity provides a concrete address.Identity: a local peer's
// stable ID paired with the addresses it advertises itself under. Deriving
// that ID from a keypair is out of scope here; see spec.md §1.
package identity

import (
	"github.com/cobwebnet/cobweb/address"
)

// Static is a fixed Identity: its ID and advertised addresses never change
// after construction.
type Static struct {
	id    address.PeerID
	addrs []address.Multiaddr
}

var _ address.Identity = (*Static)(nil)

// New builds a Static identity from a pre-validated PeerID and the set of
// addresses it should advertise. addrs need not carry a trailing identity
// segment; callers needing the full "/.../p2p/<id>" form should call
// Multiaddr.WithPeerID themselves.
func New(id address.PeerID, addrs ...address.Multiaddr) *Static {
	cp := make([]address.Multiaddr, len(addrs))
	copy(cp, addrs)
	return &Static{id: id, addrs: cp}
}

// FromPeerIDString parses id with ParsePeerID before constructing Static,
// returning address.ErrInvalidPeerID on a malformed value.
func FromPeerIDString(id string, addrs ...address.Multiaddr) (*Static, error) {
	peerID, err := address.ParsePeerID(id)
	if err != nil {
		return nil, err
	}
	return New(peerID, addrs...), nil
}

// ID returns the local peer ID.
func (s *Static) ID() address.PeerID {
	return s.id
}

// Addrs returns a defensive copy of the addresses this identity advertises.
func (s *Static) Addrs() []address.Multiaddr {
	cp := make([]address.Multiaddr, len(s.addrs))
	copy(cp, s.addrs)
	return cp
}
