// Package address implements the multi-address and peer identity model
// described in spec.md §3–§4.1: ordered `/proto/value/...` segments,
// textual/binary encoding, and the peer identity terminator.
package address

import (
	"strings"

	"github.com/multiformats/go-varint"
)

// Segment is one `/proto/value` pair of a Multiaddr.
type Segment struct {
	Proto string
	Value string
}

// Multiaddr is an ordered, non-empty sequence of protocol/value segments.
// It is a value type: two Multiaddrs are Equal iff their canonical textual
// forms match, per spec.md §3.
type Multiaddr struct {
	segments []Segment
}

// New builds a Multiaddr directly from segments, normalizing any legacy
// "ipfs" identity alias to "p2p". It does not validate protocol names
// against the well-known table — use Parse for untrusted input.
func New(segments ...Segment) Multiaddr {
	out := make([]Segment, len(segments))
	for i, s := range segments {
		out[i] = Segment{Proto: normalizeProtocolName(s.Proto), Value: s.Value}
	}
	return Multiaddr{segments: out}
}

// Segments returns a defensive copy of the address's segments.
func (m Multiaddr) Segments() []Segment {
	out := make([]Segment, len(m.segments))
	copy(out, m.segments)
	return out
}

// Len returns the number of segments.
func (m Multiaddr) Len() int {
	return len(m.segments)
}

// IsZero reports whether m carries no segments. A zero Multiaddr is never
// valid as an operand to registerPeer/connect/etc.; it exists only as the
// absence value for optional fields that do not use a pointer.
func (m Multiaddr) IsZero() bool {
	return len(m.segments) == 0
}

// String returns the canonical textual form: "/proto/value/proto/value/...".
func (m Multiaddr) String() string {
	var b strings.Builder
	for _, s := range m.segments {
		b.WriteByte('/')
		b.WriteString(s.Proto)
		b.WriteByte('/')
		b.WriteString(s.Value)
	}
	return b.String()
}

// Equal compares two Multiaddrs by canonical textual form.
func (m Multiaddr) Equal(other Multiaddr) bool {
	return m.String() == other.String()
}

// Bytes returns the binary encoding of m: each segment is a
// varint-length-prefixed protocol name followed by a varint-length-prefixed
// value. This is used nowhere on the spec's own wire path (the spec only
// requires a textual form) but gives callers a compact, self-describing
// encoding for storage or transmission, grounded in the varint framing the
// teacher's own wire codecs use.
func (m Multiaddr) Bytes() []byte {
	var out []byte
	for _, s := range m.segments {
		out = appendLP(out, s.Proto)
		out = appendLP(out, s.Value)
	}
	return out
}

func appendLP(dst []byte, s string) []byte {
	dst = append(dst, varint.ToUvarint(uint64(len(s)))...)
	return append(dst, s...)
}

// HasProtocol reports whether any segment's protocol (after alias
// normalization) matches name.
func (m Multiaddr) HasProtocol(name string) bool {
	name = normalizeProtocolName(name)
	for _, s := range m.segments {
		if s.Proto == name {
			return true
		}
	}
	return false
}

// ValueForProtocol returns the value of the first segment whose protocol
// matches name.
func (m Multiaddr) ValueForProtocol(name string) (string, bool) {
	name = normalizeProtocolName(name)
	for _, s := range m.segments {
		if s.Proto == name {
			return s.Value, true
		}
	}
	return "", false
}

// IdentitySegment reports the PeerID carried by the final segment if it is
// a p2p/ipfs identity terminator, per spec.md §3's "final segment's
// protocol is the identity marker" rule.
func (m Multiaddr) IdentitySegment() (PeerID, bool) {
	if len(m.segments) == 0 {
		return "", false
	}
	last := m.segments[len(m.segments)-1]
	if !IsIdentityProtocol(last.Proto) {
		return "", false
	}
	id, err := ParsePeerID(last.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

// WithPeerID returns a copy of m with a trailing "/p2p/<id>" segment
// appended, replacing any existing identity terminator.
func (m Multiaddr) WithPeerID(id PeerID) Multiaddr {
	base := m.WithoutPeerID()
	segs := append(base.segments, Segment{Proto: ProtoP2P, Value: id.String()})
	return Multiaddr{segments: segs}
}

// WithoutPeerID returns a copy of m with its identity terminator, if any,
// removed.
func (m Multiaddr) WithoutPeerID() Multiaddr {
	if len(m.segments) == 0 {
		return m
	}
	last := m.segments[len(m.segments)-1]
	if !IsIdentityProtocol(last.Proto) {
		segs := make([]Segment, len(m.segments))
		copy(segs, m.segments)
		return Multiaddr{segments: segs}
	}
	segs := make([]Segment, len(m.segments)-1)
	copy(segs, m.segments[:len(m.segments)-1])
	return Multiaddr{segments: segs}
}

// FirstRegisteredTransport scans m's segments in order and returns the name
// of the first one for which isRegistered reports true, per spec.md §4.3's transport-selection
// rule ("the first segment whose name is registered"). ok is false if no
// segment matches.
func (m Multiaddr) FirstRegisteredTransport(isRegistered func(proto string) bool) (proto string, ok bool) {
	for _, s := range m.segments {
		if isRegistered(s.Proto) {
			return s.Proto, true
		}
	}
	return "", false
}
