package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cobwebnet/cobweb/address"
)

func TestPolicy_AllowsEverythingByDefault(t *testing.T) {
	p := New()
	assert.True(t, p.Allowed(address.MustParse("/ip4/1.2.3.4/tcp/4001")))
}

func TestPolicy_DenyListRejectsByPrefix(t *testing.T) {
	p := New()
	p.Deny.Add(address.MustParse("/ip4/10.0.0.0"))

	assert.True(t, p.NotAllowed(address.MustParse("/ip4/10.0.0.0/tcp/4001")))
	assert.True(t, p.Allowed(address.MustParse("/ip4/11.0.0.0/tcp/4001")))
}

func TestPolicy_DenyListRejectsByExactMatch(t *testing.T) {
	p := New()
	addr := address.MustParse("/ip4/10.0.0.5/tcp/4001")
	p.Deny.Add(addr)

	assert.True(t, p.NotAllowed(addr))
}

func TestPolicy_AllowListRestrictsToMembers(t *testing.T) {
	p := New()
	p.Allow.Add(address.MustParse("/ip4/192.168.0.0"))

	assert.True(t, p.Allowed(address.MustParse("/ip4/192.168.0.0/tcp/4001")))
	assert.True(t, p.NotAllowed(address.MustParse("/ip4/10.0.0.1/tcp/4001")))
}

func TestPolicy_DenyTakesPrecedenceOverAllow(t *testing.T) {
	p := New()
	addr := address.MustParse("/ip4/192.168.0.5/tcp/4001")
	p.Allow.Add(address.MustParse("/ip4/192.168.0.0"))
	p.Deny.Add(addr)

	assert.True(t, p.NotAllowed(addr))
}

func TestPolicy_Reset(t *testing.T) {
	p := New()
	denied := address.MustParse("/ip4/10.0.0.1/tcp/4001")
	p.Deny.Add(denied)
	p.Allow.Add(address.MustParse("/ip4/192.168.0.0"))

	p.Reset()

	assert.True(t, p.Allowed(denied))
	assert.Equal(t, 0, p.Deny.Len())
	assert.Equal(t, 0, p.Allow.Len())
}

func TestList_RemoveAndClear(t *testing.T) {
	l := NewList()
	addr := address.MustParse("/ip4/1.2.3.4")
	l.Add(addr)
	assert.Equal(t, 1, l.Len())

	l.Remove(addr)
	assert.Equal(t, 0, l.Len())

	l.Add(addr)
	l.Clear()
	assert.Equal(t, 0, l.Len())
}
