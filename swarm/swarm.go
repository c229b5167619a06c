// Package swarm implements the coordinator described in spec.md §4.5:
// the component owning the peer, stream and listener tables, enforcing
// policy, and driving connection lifecycles over a transport.Registry.
package swarm

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/semaphore"

	"github.com/cobwebnet/cobweb/address"
	"github.com/cobwebnet/cobweb/conn"
	cobweblog "github.com/cobwebnet/cobweb/log"
	"github.com/cobwebnet/cobweb/policy"
	"github.com/cobwebnet/cobweb/transport"
)

var log = cobweblog.Logger("swarm")

// Phase is the Swarm's lifecycle state.
type Phase int

const (
	Stopped Phase = iota
	Started
	Stopping
)

func (p Phase) String() string {
	switch p {
	case Stopped:
		return "stopped"
	case Started:
		return "started"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// listenerEntry holds a listener's cancellation signal, so stopListening
// only has to close one channel.
type listenerEntry struct {
	cancel chan struct{}
}

// Swarm coordinates the peer, stream and listener tables described in
// spec.md §3. A single mutex guards all three; critical sections are kept
// to O(1) map operations and never span I/O, which is what lets different
// peer-IDs dial, register or disconnect in parallel despite the single
// lock.
type Swarm struct {
	mu    sync.RWMutex
	phase Phase

	localID    address.PeerID
	localAddrs []address.Multiaddr

	peers     map[address.PeerID]Peer
	streams   map[address.PeerID]transport.Stream
	listeners map[string]listenerEntry

	registry   *transport.Registry
	resolver   address.Resolver
	policy     *policy.Policy
	handshaker conn.Handshaker

	config  *Config
	clock   clock.Clock
	metrics *metrics
	dialSem *semaphore.Weighted
}

// NewSwarm constructs a Swarm for identity, dialing and listening through
// registry. resolver may be nil, in which case address.IdentityResolver{}
// is used (no DNS capability, everything else passes through unchanged).
func NewSwarm(identity address.Identity, registry *transport.Registry, resolver address.Resolver, opts ...Option) (*Swarm, error) {
	if identity == nil {
		return nil, fmt.Errorf("swarm: identity must not be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("swarm: registry must not be nil")
	}
	if resolver == nil {
		resolver = address.IdentityResolver{}
	}

	s := &Swarm{
		phase:      Stopped,
		localID:    identity.ID(),
		localAddrs: identity.Addrs(),
		peers:      make(map[address.PeerID]Peer),
		streams:    make(map[address.PeerID]transport.Stream),
		listeners:  make(map[string]listenerEntry),
		registry:   registry,
		resolver:   resolver,
		policy:     policy.New(),
		handshaker: conn.NoopHandshaker{},
		config:     DefaultConfig(),
		clock:      clock.New(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.dialSem = semaphore.NewWeighted(s.config.MaxConcurrentDials)

	return s, nil
}

// LocalID returns the Swarm's local peer ID.
func (s *Swarm) LocalID() address.PeerID {
	return s.localID
}

// Phase returns the Swarm's current lifecycle phase.
func (s *Swarm) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Start transitions Stopped -> Started. Currently a no-op beyond logging
// and the phase transition itself, per spec.md §4.5.
func (s *Swarm) Start() {
	s.mu.Lock()
	s.phase = Started
	s.mu.Unlock()
	log.Info("swarm started", "localPeer", s.localID.String())
}

// Stop transitions Started -> Stopping, cancels every listener, disconnects
// every connected peer, then clears all tables and resets policy lists,
// landing in Stopped. It swallows per-listener and per-disconnect failures
// to guarantee forward progress, per spec.md §7.
func (s *Swarm) Stop() {
	s.mu.Lock()
	s.phase = Stopping
	listeners := s.listeners
	s.listeners = make(map[string]listenerEntry)
	peerIDs := make([]address.PeerID, 0, len(s.peers))
	for id, p := range s.peers {
		if p.ConnectedAddress != nil {
			peerIDs = append(peerIDs, id)
		}
	}
	s.mu.Unlock()

	for _, entry := range listeners {
		close(entry.cancel)
	}

	for _, id := range peerIDs {
		s.disconnectPeerID(id)
	}

	s.mu.Lock()
	s.peers = make(map[address.PeerID]Peer)
	s.streams = make(map[address.PeerID]transport.Stream)
	s.phase = Stopped
	s.mu.Unlock()

	s.policy.Reset()
	s.metrics.setKnownPeers(0)
	s.metrics.setConnectedPeers(0)

	log.Info("swarm stopped", "localPeer", s.localID.String())
}

// requireStarted returns ErrNotStarted unless the Swarm is in the Started
// phase. It takes s.mu's read lock itself, so callers must not already
// hold s.mu.
func (s *Swarm) requireStarted() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != Started {
		return ErrNotStarted
	}
	return nil
}
