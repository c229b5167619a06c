package swarm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobwebnet/cobweb/address"
	"github.com/cobwebnet/cobweb/conn"
	"github.com/cobwebnet/cobweb/identity"
	"github.com/cobwebnet/cobweb/transport"
)

type fakeTransport struct {
	results map[string]fakeResult

	// onAccept is captured from Listen so tests can drive inbound
	// connections by calling it directly, the way a real accept loop
	// would on a new connection.
	onAccept transport.AcceptFunc
}

type fakeResult struct {
	stream transport.Stream
	err    error
}

type fakeStream struct{}

func (fakeStream) Read([]byte) (int, error)  { return 0, nil }
func (fakeStream) Write([]byte) (int, error) { return 0, nil }
func (fakeStream) Close() error              { return nil }

// trackingStream records whether Close was called, for asserting that an
// orphaned or rejected stream was actually disposed.
type trackingStream struct {
	closed bool
}

func (s *trackingStream) Read([]byte) (int, error)  { return 0, nil }
func (s *trackingStream) Write([]byte) (int, error) { return 0, nil }
func (s *trackingStream) Close() error {
	s.closed = true
	return nil
}

func newFakeTransport(results map[string]fakeResult) *fakeTransport {
	return &fakeTransport{results: results}
}

func (f *fakeTransport) Connect(ctx context.Context, addr address.Multiaddr) (transport.Stream, error) {
	r, ok := f.results[addr.String()]
	if !ok {
		return nil, errors.New("fakeTransport: no behavior configured for " + addr.String())
	}
	return r.stream, r.err
}

func (f *fakeTransport) Listen(addr address.Multiaddr, onAccept transport.AcceptFunc, cancel <-chan struct{}) (address.Multiaddr, error) {
	f.onAccept = onAccept
	return addr, nil
}

type fakeResolver struct {
	addrs []address.Multiaddr
	err   error
}

func (f fakeResolver) Resolve(ctx context.Context, addr address.Multiaddr) ([]address.Multiaddr, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.addrs, nil
}

// fakeHandshaker lets tests control what onAccept/Connect observe without
// a real handshake protocol: Initiate always succeeds, Respond returns
// respondErr if set, otherwise stamps respondPeer onto the Connection.
type fakeHandshaker struct {
	respondErr  error
	respondPeer address.PeerID
}

func (fakeHandshaker) Initiate(context.Context, *conn.Connection) error { return nil }

func (h fakeHandshaker) Respond(_ context.Context, c *conn.Connection) error {
	if h.respondErr != nil {
		return h.respondErr
	}
	c.RemotePeer = h.respondPeer
	return nil
}

func newTestSwarm(t *testing.T, localID string, tr transport.Transport, opts ...Option) *Swarm {
	t.Helper()
	id := identity.New(address.PeerID(localID))
	reg := transport.NewRegistry()
	require.NoError(t, reg.Register("tcp", tr))

	s, err := NewSwarm(id, reg, nil, opts...)
	require.NoError(t, err)
	s.Start()
	t.Cleanup(s.Stop)
	return s
}

func TestRegisterPeer_MissingIdentityFails(t *testing.T) {
	s := newTestSwarm(t, "QmHostNode", newFakeTransport(nil))

	_, err := s.RegisterPeer(address.MustParse("/ip4/127.0.0.1/tcp/4001"), nil)
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

func TestRegisterPeer_SelfRegistrationFails(t *testing.T) {
	s := newTestSwarm(t, "QmHostNode", newFakeTransport(nil))

	_, err := s.RegisterPeer(address.MustParse("/ip4/1.2.3.4/tcp/4001/p2p/QmHostNode"), nil)
	assert.ErrorIs(t, err, ErrSelfRegistration)
}

func TestRegisterPeer_DenyListRejects(t *testing.T) {
	s := newTestSwarm(t, "QmHostNode", newFakeTransport(nil))
	denied := address.MustParse("/ip4/10.0.0.1/tcp/4001/p2p/QmX")
	s.DenyList().Add(address.MustParse("/ip4/10.0.0.1/tcp/4001"))

	_, err := s.RegisterPeer(denied, nil)
	assert.ErrorIs(t, err, ErrPolicyDenied)
}

func TestRegisterPeer_MergesAddressesForSamePeer(t *testing.T) {
	s := newTestSwarm(t, "QmHostNode", newFakeTransport(nil))
	a := address.MustParse("/ip4/1.2.3.4/tcp/4001/p2p/QmX")
	b := address.MustParse("/ip4/5.6.7.8/tcp/4001/p2p/QmX")

	_, err := s.RegisterPeer(a, nil)
	require.NoError(t, err)
	_, err = s.RegisterPeer(b, nil)
	require.NoError(t, err)

	known := s.KnownPeers()
	require.Len(t, known, 1)
	assert.Len(t, known[0].Addresses, 2)
}

func TestRegisterPeer_IsIdempotent(t *testing.T) {
	s := newTestSwarm(t, "QmHostNode", newFakeTransport(nil))
	a := address.MustParse("/ip4/1.2.3.4/tcp/4001/p2p/QmX")

	_, err := s.RegisterPeer(a, nil)
	require.NoError(t, err)
	_, err = s.RegisterPeer(a, nil)
	require.NoError(t, err)

	known := s.KnownPeers()
	require.Len(t, known, 1)
	assert.Len(t, known[0].Addresses, 1)
}

func TestConnect_SucceedsOnThirdAddressAfterTwoFailures(t *testing.T) {
	a1 := address.MustParse("/ip4/10.0.0.1/tcp/4001")
	a2 := address.MustParse("/ip4/10.0.0.2/tcp/4001")
	a3 := address.MustParse("/ip4/10.0.0.3/tcp/4001")
	peerAddr := address.MustParse("/ip4/10.0.0.1/tcp/4001/p2p/QmX")

	tr := newFakeTransport(map[string]fakeResult{
		a1.String(): {err: errors.New("boom")},
		a2.String(): {err: errors.New("boom")},
		a3.String(): {stream: fakeStream{}},
	})
	s := newTestSwarm(t, "QmHostNode", tr)
	s.resolver = fakeResolver{addrs: []address.Multiaddr{a1, a2, a3}}

	peer, err := s.Connect(peerAddr, nil)
	require.NoError(t, err)
	require.NotNil(t, peer)
	require.NotNil(t, peer.ConnectedAddress)
	assert.True(t, peer.ConnectedAddress.Equal(a3))

	s.mu.RLock()
	_, hasStream := s.streams[address.PeerID("QmX")]
	streamCount := len(s.streams)
	s.mu.RUnlock()
	assert.True(t, hasStream)
	assert.Equal(t, 1, streamCount)
}

func TestConnect_AlreadyConnectedIsNoOp(t *testing.T) {
	addr := address.MustParse("/ip4/10.0.0.1/tcp/4001/p2p/QmX")
	tr := newFakeTransport(map[string]fakeResult{
		address.MustParse("/ip4/10.0.0.1/tcp/4001").String(): {stream: fakeStream{}},
	})
	s := newTestSwarm(t, "QmHostNode", tr)
	s.resolver = fakeResolver{addrs: []address.Multiaddr{address.MustParse("/ip4/10.0.0.1/tcp/4001")}}

	_, err := s.Connect(addr, nil)
	require.NoError(t, err)

	// Swap in a resolver that would fail, to prove the second Connect call
	// never reaches it because the peer is already connected.
	s.resolver = fakeResolver{err: errors.New("should not be called")}
	peer, err := s.Connect(addr, nil)
	require.NoError(t, err)
	assert.NotNil(t, peer.ConnectedAddress)
}

func TestConnect_UnreachableAfterAllAttemptsFail(t *testing.T) {
	a1 := address.MustParse("/ip4/10.0.0.1/tcp/4001")
	tr := newFakeTransport(map[string]fakeResult{
		a1.String(): {err: errors.New("boom")},
	})
	s := newTestSwarm(t, "QmHostNode", tr)
	s.resolver = fakeResolver{addrs: []address.Multiaddr{a1}}

	_, err := s.Connect(address.MustParse("/ip4/10.0.0.1/tcp/4001/p2p/QmX"), nil)
	var unreachable *UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, address.PeerID("QmX"), unreachable.PeerID)
	assert.Len(t, unreachable.Attempts, 1)
}

func TestDisconnect_IsIdempotent(t *testing.T) {
	addr := address.MustParse("/ip4/10.0.0.1/tcp/4001/p2p/QmX")
	tr := newFakeTransport(map[string]fakeResult{
		address.MustParse("/ip4/10.0.0.1/tcp/4001").String(): {stream: fakeStream{}},
	})
	s := newTestSwarm(t, "QmHostNode", tr)
	s.resolver = fakeResolver{addrs: []address.Multiaddr{address.MustParse("/ip4/10.0.0.1/tcp/4001")}}

	_, err := s.Connect(addr, nil)
	require.NoError(t, err)

	s.Disconnect(addr, nil)
	s.Disconnect(addr, nil)

	known := s.KnownPeers()
	require.Len(t, known, 1)
	assert.Nil(t, known[0].ConnectedAddress)
}

func TestDisconnect_SilentOnUnknownPeer(t *testing.T) {
	s := newTestSwarm(t, "QmHostNode", newFakeTransport(nil))
	assert.NotPanics(t, func() {
		s.Disconnect(address.MustParse("/ip4/1.2.3.4/tcp/4001/p2p/QmUnknown"), nil)
	})
}

func TestStartListening_AlreadyListeningFails(t *testing.T) {
	s := newTestSwarm(t, "QmHostNode", newFakeTransport(nil))
	addr := address.MustParse("/ip4/0.0.0.0/tcp/0")

	bound, err := s.StartListening(addr)
	require.NoError(t, err)
	assert.True(t, bound.HasProtocol(address.ProtoP2P))
	id, ok := bound.IdentitySegment()
	require.True(t, ok)
	assert.Equal(t, address.PeerID("QmHostNode"), id)

	_, err = s.StartListening(addr)
	assert.ErrorIs(t, err, ErrAlreadyListening)
}

func TestStopListening_FiresCancellation(t *testing.T) {
	s := newTestSwarm(t, "QmHostNode", newFakeTransport(nil))
	addr := address.MustParse("/ip4/0.0.0.0/tcp/0")

	_, err := s.StartListening(addr)
	require.NoError(t, err)

	s.mu.RLock()
	entry := s.listeners[addr.String()]
	s.mu.RUnlock()

	s.StopListening(addr)

	select {
	case <-entry.cancel:
	case <-time.After(time.Second):
		t.Fatal("cancellation signal was never fired")
	}
}

func TestStop_ClearsAllTables(t *testing.T) {
	addr := address.MustParse("/ip4/10.0.0.1/tcp/4001/p2p/QmX")
	tr := newFakeTransport(map[string]fakeResult{
		address.MustParse("/ip4/10.0.0.1/tcp/4001").String(): {stream: fakeStream{}},
	})
	s := newTestSwarm(t, "QmHostNode", tr)
	s.resolver = fakeResolver{addrs: []address.Multiaddr{address.MustParse("/ip4/10.0.0.1/tcp/4001")}}

	_, err := s.Connect(addr, nil)
	require.NoError(t, err)
	_, err = s.StartListening(address.MustParse("/ip4/0.0.0.0/tcp/0"))
	require.NoError(t, err)

	s.Stop()

	assert.Empty(t, s.KnownPeers())
	s.mu.RLock()
	streamCount, listenerCount := len(s.streams), len(s.listeners)
	s.mu.RUnlock()
	assert.Zero(t, streamCount)
	assert.Zero(t, listenerCount)
	assert.Equal(t, Stopped, s.Phase())
}

func TestStartListening_MissingTransportFails(t *testing.T) {
	s := newTestSwarm(t, "QmHostNode", newFakeTransport(nil))

	_, err := s.StartListening(address.MustParse("/ip4/0.0.0.0/udp/0"))
	assert.ErrorIs(t, err, ErrMissingTransport)

	s.mu.RLock()
	listenerCount := len(s.listeners)
	s.mu.RUnlock()
	assert.Zero(t, listenerCount, "a failed listen must not leave a dangling listener entry")
}

func TestOnAccept_SuccessRegistersPeerAndStream(t *testing.T) {
	tr := newFakeTransport(nil)
	s := newTestSwarm(t, "QmHostNode", tr, WithHandshaker(fakeHandshaker{respondPeer: address.PeerID("QmX")}))

	_, err := s.StartListening(address.MustParse("/ip4/0.0.0.0/tcp/0"))
	require.NoError(t, err)
	require.NotNil(t, tr.onAccept)

	local := address.MustParse("/ip4/127.0.0.1/tcp/4001")
	remote := address.MustParse("/ip4/10.0.0.1/tcp/55000")
	stream := &trackingStream{}
	tr.onAccept(stream, local, remote)

	known := s.KnownPeers()
	require.Len(t, known, 1)
	assert.Equal(t, address.PeerID("QmX"), known[0].ID)
	require.NotNil(t, known[0].ConnectedAddress)
	assert.False(t, stream.closed)

	s.mu.RLock()
	_, hasStream := s.streams[address.PeerID("QmX")]
	s.mu.RUnlock()
	assert.True(t, hasStream)
}

func TestOnAccept_HandshakeFailureDisposesStream(t *testing.T) {
	tr := newFakeTransport(nil)
	s := newTestSwarm(t, "QmHostNode", tr, WithHandshaker(fakeHandshaker{respondErr: errors.New("bad handshake")}))

	_, err := s.StartListening(address.MustParse("/ip4/0.0.0.0/tcp/0"))
	require.NoError(t, err)
	require.NotNil(t, tr.onAccept)

	local := address.MustParse("/ip4/127.0.0.1/tcp/4001")
	remote := address.MustParse("/ip4/10.0.0.1/tcp/55000")
	stream := &trackingStream{}
	tr.onAccept(stream, local, remote)

	assert.Empty(t, s.KnownPeers())
	assert.True(t, stream.closed)
}

func TestOnAccept_PolicyDeniedRejectsAfterHandshake(t *testing.T) {
	tr := newFakeTransport(nil)
	s := newTestSwarm(t, "QmHostNode", tr, WithHandshaker(fakeHandshaker{respondPeer: address.PeerID("QmX")}))
	s.DenyList().Add(address.MustParse("/ip4/10.0.0.1/tcp/55000"))

	_, err := s.StartListening(address.MustParse("/ip4/0.0.0.0/tcp/0"))
	require.NoError(t, err)
	require.NotNil(t, tr.onAccept)

	local := address.MustParse("/ip4/127.0.0.1/tcp/4001")
	remote := address.MustParse("/ip4/10.0.0.1/tcp/55000")
	stream := &trackingStream{}
	tr.onAccept(stream, local, remote)

	assert.Empty(t, s.KnownPeers())
	assert.True(t, stream.closed)

	s.mu.RLock()
	_, hasStream := s.streams[address.PeerID("QmX")]
	s.mu.RUnlock()
	assert.False(t, hasStream)
}
