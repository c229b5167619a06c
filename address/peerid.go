package address

import "github.com/mr-tron/base58"

// PeerID is an opaque peer identifier. Two PeerIDs are equal iff their
// textual forms match, per spec.md §3.
type PeerID string

// ParsePeerID validates s as base58 text and returns it as a PeerID. The
// canonical representation is the textual form itself; decoding is only
// used to reject garbage values early.
func ParsePeerID(s string) (PeerID, error) {
	if s == "" {
		return "", ErrInvalidPeerID
	}
	if _, err := base58.Decode(s); err != nil {
		return "", ErrInvalidPeerID
	}
	return PeerID(s), nil
}

// String returns the canonical base58 textual form.
func (id PeerID) String() string {
	return string(id)
}

// Empty reports whether id carries no value.
func (id PeerID) Empty() bool {
	return id == ""
}
