package address

import "errors"

var (
	// ErrEmptyAddress is returned by Parse for an empty or whitespace-only
	// input string.
	ErrEmptyAddress = errors.New("address: empty multiaddr")

	// ErrMalformed is returned by Parse when the textual form does not
	// follow the "/proto/value/proto/value/..." shape.
	ErrMalformed = errors.New("address: malformed multiaddr")

	// ErrUnknownProtocol is returned by Parse for a segment whose protocol
	// name is not in the well-known table.
	ErrUnknownProtocol = errors.New("address: unknown protocol")

	// ErrMissingIdentity is returned by operations that require a
	// terminating "/p2p/<id>" (or legacy "/ipfs/<id>") segment when one is
	// absent, per spec.md §3.
	ErrMissingIdentity = errors.New("address: missing identity segment")

	// ErrInvalidPeerID is returned when a p2p/ipfs segment's value is not
	// valid base58.
	ErrInvalidPeerID = errors.New("address: invalid peer id")

	// ErrNoResolver is returned by IdentityResolver when asked to resolve
	// an address that carries a DNS segment it has no means to look up.
	ErrNoResolver = errors.New("address: dns segment present but no resolver configured")
)
