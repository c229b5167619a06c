package dnsresolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobwebnet/cobweb/address"
)

func newTestResolver(t *testing.T, exchange exchangeFunc) *Resolver {
	t.Helper()
	r, err := New(Config{
		Servers:   []string{"10.255.255.1:53"},
		Timeout:   time.Second,
		CacheSize: 8,
		CacheTTL:  time.Minute,
	})
	require.NoError(t, err)
	r.exchange = exchange
	return r
}

func aRecordResponse(name, ip string) *dns.Msg {
	rr, _ := dns.NewRR(name + " 300 IN A " + ip)
	return &dns.Msg{Answer: []dns.RR{rr}}
}

func TestResolve_PassesThroughWithoutDNSSegment(t *testing.T) {
	r := newTestResolver(t, func(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, time.Duration, error) {
		t.Fatal("exchange should not be called when there is no dns segment")
		return nil, 0, nil
	})

	addr := address.MustParse("/ip4/1.2.3.4/tcp/4001")
	out, err := r.Resolve(context.Background(), addr)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Equal(addr))
}

func TestResolve_ExpandsDNS4PreservingIdentity(t *testing.T) {
	r := newTestResolver(t, func(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, time.Duration, error) {
		return aRecordResponse(m.Question[0].Name, "5.6.7.8"), 0, nil
	})

	addr := address.MustParse("/dns4/example.com/tcp/4001/p2p/QmX")
	out, err := r.Resolve(context.Background(), addr)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "/ip4/5.6.7.8/tcp/4001/p2p/QmX", out[0].String())
}

func TestResolve_CachesSuccessfulLookups(t *testing.T) {
	calls := 0
	r := newTestResolver(t, func(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, time.Duration, error) {
		calls++
		return aRecordResponse(m.Question[0].Name, "9.9.9.9"), 0, nil
	})

	addr := address.MustParse("/dns4/example.com/tcp/4001")
	_, err := r.Resolve(context.Background(), addr)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), addr)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestResolve_FailsWhenAllServersError(t *testing.T) {
	r := newTestResolver(t, func(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, time.Duration, error) {
		return nil, 0, errors.New("network unreachable")
	})

	addr := address.MustParse("/dns4/example.com/tcp/4001")
	_, err := r.Resolve(context.Background(), addr)
	assert.Error(t, err)
}
