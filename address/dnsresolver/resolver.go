// Package dnsresolver provides a concrete address.Resolver that expands
// "/dns", "/dns4" and "/dns6" segments into "/ip4"/"/ip6" segments using
// real DNS lookups, with an LRU cache in front of the network.
package dnsresolver

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/miekg/dns"

	"github.com/cobwebnet/cobweb/address"
	cobweblog "github.com/cobwebnet/cobweb/log"
)

var log = cobweblog.Logger("address.dnsresolver")

// Config controls lookup behavior.
type Config struct {
	// Servers are "host:port" DNS resolvers queried in order. The first
	// to answer wins.
	Servers []string

	// Timeout bounds a single upstream query.
	Timeout time.Duration

	// CacheSize bounds the number of resolved names kept in memory.
	CacheSize int

	// CacheTTL is the maximum age of a cached answer, independent of the
	// record's own TTL, so a misbehaving upstream can't pin a stale
	// answer forever.
	CacheTTL time.Duration
}

// DefaultConfig returns sane defaults: one public resolver, a 5s per-query
// timeout, and a small cache.
func DefaultConfig() Config {
	return Config{
		Servers:   []string{"1.1.1.1:53"},
		Timeout:   5 * time.Second,
		CacheSize: 512,
		CacheTTL:  5 * time.Minute,
	}
}

type cacheEntry struct {
	addrs     []string
	expiresAt time.Time
}

type exchangeFunc func(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, time.Duration, error)

// Resolver implements address.Resolver by expanding DNS segments in place
// and leaving every other segment, including a trailing identity segment,
// untouched.
type Resolver struct {
	cfg      Config
	exchange exchangeFunc
	cache    *lru.Cache[string, cacheEntry]
}

// New constructs a Resolver. It never blocks and performs no I/O until
// Resolve is called.
func New(cfg Config) (*Resolver, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1
	}
	cache, err := lru.New[string, cacheEntry](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("dnsresolver: %w", err)
	}
	client := &dns.Client{Timeout: cfg.Timeout}
	return &Resolver{
		cfg:      cfg,
		exchange: client.ExchangeContext,
		cache:    cache,
	}, nil
}

// Resolve implements address.Resolver.
func (r *Resolver) Resolve(ctx context.Context, addr address.Multiaddr) ([]address.Multiaddr, error) {
	segs := addr.Segments()

	dnsIdx := -1
	for i, s := range segs {
		if address.IsDNSProtocol(s.Proto) {
			dnsIdx = i
			break
		}
	}
	if dnsIdx == -1 {
		return []address.Multiaddr{addr}, nil
	}

	host := segs[dnsIdx].Proto
	ips, err := r.lookup(ctx, segs[dnsIdx].Value, host)
	if err != nil {
		return nil, fmt.Errorf("dnsresolver: resolve %q: %w", segs[dnsIdx].Value, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("dnsresolver: no addresses found for %q", segs[dnsIdx].Value)
	}

	out := make([]address.Multiaddr, 0, len(ips))
	for _, ip := range ips {
		proto := address.ProtoIP4
		if isIPv6(ip) {
			proto = address.ProtoIP6
		}
		rebuilt := make([]address.Segment, 0, len(segs))
		rebuilt = append(rebuilt, segs[:dnsIdx]...)
		rebuilt = append(rebuilt, address.Segment{Proto: proto, Value: ip})
		rebuilt = append(rebuilt, segs[dnsIdx+1:]...)
		out = append(out, address.New(rebuilt...))
	}
	return out, nil
}

func (r *Resolver) lookup(ctx context.Context, name, dnsProto string) ([]string, error) {
	key := dnsProto + ":" + name
	if e, ok := r.cache.Get(key); ok && time.Now().Before(e.expiresAt) {
		return e.addrs, nil
	}

	qtype := uint16(dns.TypeA)
	if dnsProto == address.ProtoDNS6 {
		qtype = dns.TypeAAAA
	}

	fqdn := dns.Fqdn(name)
	var lastErr error
	for _, server := range r.cfg.Servers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg := new(dns.Msg)
		msg.SetQuestion(fqdn, qtype)
		resp, _, err := r.exchange(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}
		ips := extractIPs(resp, qtype)
		if dnsProto == address.ProtoDNS && len(ips) == 0 {
			// "/dns" is address-family agnostic: retry the other family
			// against the same server before giving up on it.
			altType := uint16(dns.TypeAAAA)
			if qtype == dns.TypeAAAA {
				altType = dns.TypeA
			}
			alt := new(dns.Msg)
			alt.SetQuestion(fqdn, altType)
			if altResp, _, altErr := r.exchange(ctx, alt, server); altErr == nil {
				ips = extractIPs(altResp, altType)
			}
		}
		if len(ips) > 0 {
			r.cache.Add(key, cacheEntry{addrs: ips, expiresAt: time.Now().Add(r.cfg.CacheTTL)})
			return ips, nil
		}
	}
	if lastErr != nil {
		log.Warn("dns lookup failed", "name", name, "error", lastErr)
		return nil, lastErr
	}
	return nil, nil
}

func extractIPs(resp *dns.Msg, qtype uint16) []string {
	if resp == nil {
		return nil
	}
	var out []string
	for _, rr := range resp.Answer {
		switch qtype {
		case dns.TypeA:
			if a, ok := rr.(*dns.A); ok {
				out = append(out, a.A.String())
			}
		case dns.TypeAAAA:
			if a, ok := rr.(*dns.AAAA); ok {
				out = append(out, a.AAAA.String())
			}
		}
	}
	return out
}

func isIPv6(ip string) bool {
	for _, c := range ip {
		if c == ':' {
			return true
		}
	}
	return false
}
