package address

import "context"

// Resolver is the external collaborator described in spec.md §4.1 and §6:
// it turns a Multiaddr that may carry a `/dns*/` segment into one or more
// concrete, dialable addresses. Implementations must never block
// indefinitely and must return the input unchanged when no DNS segment is
// present.
type Resolver interface {
	Resolve(ctx context.Context, addr Multiaddr) ([]Multiaddr, error)
}

// IdentityResolver resolves addresses without performing any DNS lookups:
// it returns the input unchanged unless it carries a DNS segment, in which
// case it fails. Used as the zero-configuration default so a Swarm built
// without an explicit Resolver still behaves correctly for addresses that
// never need resolution.
type IdentityResolver struct{}

// Resolve implements Resolver.
func (IdentityResolver) Resolve(_ context.Context, addr Multiaddr) ([]Multiaddr, error) {
	for _, s := range addr.Segments() {
		if IsDNSProtocol(s.Proto) {
			return nil, ErrNoResolver
		}
	}
	return []Multiaddr{addr}, nil
}
