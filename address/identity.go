package address

// Identity is the external collaborator described in spec.md §1: a local
// peer's stable ID plus the set of addresses it advertises itself under.
// Keychain/crypto material that produces the ID is explicitly out of scope
// here; this interface only carries the already-derived identity.
type Identity interface {
	ID() PeerID
	Addrs() []Multiaddr
}
