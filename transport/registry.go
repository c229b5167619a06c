package transport

import (
	"fmt"
	"sync"
)

// Registry maps protocol names to the Transport that services them. Unlike
// the teacher's process-wide transport table, Registry is an explicit
// dependency injected into the Swarm that owns it, per the redesign in
// spec.md §9: no package-level global, so multiple Swarm instances in the
// same process never share transport state by accident.
type Registry struct {
	mu         sync.RWMutex
	transports map[string]Transport
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{transports: make(map[string]Transport)}
}

// Register associates protocol with t. It fails with ErrAlreadyRegistered
// if protocol already has a transport.
func (r *Registry) Register(protocol string, t Transport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transports[protocol]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, protocol)
	}
	r.transports[protocol] = t
	return nil
}

// MustRegister panics if Register fails. Reserved for startup wiring where
// a duplicate registration is a programming error.
func (r *Registry) MustRegister(protocol string, t Transport) {
	if err := r.Register(protocol, t); err != nil {
		panic(err)
	}
}

// Lookup returns the transport registered for protocol.
func (r *Registry) Lookup(protocol string) (Transport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transports[protocol]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoTransport, protocol)
	}
	return t, nil
}

// IsRegistered reports whether protocol has a registered transport. Used
// by Multiaddr.FirstRegisteredTransport to pick the dialable protocol
// segment of an address, per spec.md §4.3.
func (r *Registry) IsRegistered(protocol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.transports[protocol]
	return ok
}

// Protocols returns the set of registered protocol names, for
// observability.
func (r *Registry) Protocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.transports))
	for p := range r.transports {
		out = append(out, p)
	}
	return out
}
