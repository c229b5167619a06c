package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobwebnet/cobweb/address"
)

func TestStatic_IDAndAddrs(t *testing.T) {
	addr := address.MustParse("/ip4/1.2.3.4/tcp/4001")
	id := address.PeerID("QmHostNode")

	s := New(id, addr)

	assert.Equal(t, id, s.ID())
	require.Len(t, s.Addrs(), 1)
	assert.True(t, s.Addrs()[0].Equal(addr))
}

func TestStatic_AddrsReturnsDefensiveCopy(t *testing.T) {
	addr := address.MustParse("/ip4/1.2.3.4/tcp/4001")
	s := New(address.PeerID("QmHostNode"), addr)

	got := s.Addrs()
	got[0] = address.MustParse("/ip4/9.9.9.9/tcp/1")

	assert.True(t, s.Addrs()[0].Equal(addr), "mutating the returned slice must not affect the identity")
}

func TestFromPeerIDString_RejectsInvalid(t *testing.T) {
	_, err := FromPeerIDString("")
	assert.ErrorIs(t, err, address.ErrInvalidPeerID)
}

func TestFromPeerIDString_Valid(t *testing.T) {
	s, err := FromPeerIDString("3gAtZfPGfoyc")
	require.NoError(t, err)
	assert.Equal(t, address.PeerID("3gAtZfPGfoyc"), s.ID())
}
