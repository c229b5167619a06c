package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobwebnet/cobweb/address"
)

type stubTransport struct{}

func (stubTransport) Connect(ctx context.Context, addr address.Multiaddr) (Stream, error) {
	return nil, nil
}

func (stubTransport) Listen(addr address.Multiaddr, onAccept AcceptFunc, cancel <-chan struct{}) (address.Multiaddr, error) {
	return addr, nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	tr := stubTransport{}

	require.NoError(t, r.Register("tcp", tr))

	got, err := r.Lookup("tcp")
	require.NoError(t, err)
	assert.Equal(t, tr, got)
	assert.True(t, r.IsRegistered("tcp"))
}

func TestRegistry_LookupUnregisteredFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("tcp")
	assert.ErrorIs(t, err, ErrNoTransport)
	assert.False(t, r.IsRegistered("tcp"))
}

func TestRegistry_DuplicateRegistrationFails(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("tcp", stubTransport{}))

	err := r.Register("tcp", stubTransport{})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistry_TwoInstancesDoNotShareState(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	require.NoError(t, a.Register("tcp", stubTransport{}))

	assert.True(t, a.IsRegistered("tcp"))
	assert.False(t, b.IsRegistered("tcp"))
}
