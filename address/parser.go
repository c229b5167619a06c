package address

import (
	"fmt"
	"strings"
)

// Parse parses the textual "/proto/value/proto/value/..." form described in
// spec.md §4.1 and §6. Every protocol name must be in the well-known table;
// unknown protocols are rejected rather than silently passed through, since
// a silently-accepted typo'd protocol would never match a registered
// transport and would fail much later, far from the parse site.
func Parse(text string) (Multiaddr, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Multiaddr{}, ErrEmptyAddress
	}
	if !strings.HasPrefix(text, "/") {
		return Multiaddr{}, fmt.Errorf("%w: must start with '/': %q", ErrMalformed, text)
	}

	parts := strings.Split(text, "/")[1:] // drop the empty element before the leading "/"
	if len(parts)%2 != 0 {
		return Multiaddr{}, fmt.Errorf("%w: odd number of components: %q", ErrMalformed, text)
	}
	if len(parts) == 0 {
		return Multiaddr{}, ErrEmptyAddress
	}

	segments := make([]Segment, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		protoName, value := parts[i], parts[i+1]
		if protoName == "" || value == "" {
			return Multiaddr{}, fmt.Errorf("%w: empty component in %q", ErrMalformed, text)
		}
		if _, ok := LookupProtocol(protoName); !ok {
			return Multiaddr{}, fmt.Errorf("%w: %q in %q", ErrUnknownProtocol, protoName, text)
		}
		segments = append(segments, Segment{Proto: normalizeProtocolName(protoName), Value: value})
	}

	return Multiaddr{segments: segments}, nil
}

// MustParse parses text and panics on error. Reserved for tests and
// constant-like initialization.
func MustParse(text string) Multiaddr {
	m, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return m
}

// RequireIdentity validates that addr's final segment is a p2p/ipfs
// identity terminator, returning the carried PeerID. This backs
// registerPeer step 1 in spec.md §4.5.1.
func RequireIdentity(addr Multiaddr) (PeerID, error) {
	id, ok := addr.IdentitySegment()
	if !ok {
		return "", ErrMissingIdentity
	}
	return id, nil
}
