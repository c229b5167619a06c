// Package tcp implements transport.Transport over plain TCP, per
// spec.md §7's list of default concrete transports.
package tcp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cobwebnet/cobweb/address"
	cobweblog "github.com/cobwebnet/cobweb/log"
	"github.com/cobwebnet/cobweb/transport"
)

var log = cobweblog.Logger("transport.tcp")

// Transport dials and accepts plain TCP connections addressed as
// "/ip4|ip6/<host>/tcp/<port>".
type Transport struct {
	dialer *net.Dialer

	mu        sync.Mutex
	listeners map[string]net.Listener
	closed    atomic.Bool
}

var _ transport.Transport = (*Transport)(nil)

// New returns a Transport using dialTimeout as the per-attempt dial
// deadline when the caller's context carries none.
func New(dialTimeout time.Duration) *Transport {
	return &Transport{
		dialer:    &net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second},
		listeners: make(map[string]net.Listener),
	}
}

// Connect implements transport.Transport.
func (t *Transport) Connect(ctx context.Context, addr address.Multiaddr) (transport.Stream, error) {
	network, hostport, ok := tcpNetAddr(addr)
	if !ok {
		return nil, transport.ErrUnavailable
	}

	conn, err := t.dialer.DialContext(ctx, network, hostport)
	if err != nil {
		return nil, fmt.Errorf("tcp: dial %s: %w", hostport, err)
	}
	return conn, nil
}

// Listen implements transport.Transport.
func (t *Transport) Listen(addr address.Multiaddr, onAccept transport.AcceptFunc, cancel <-chan struct{}) (address.Multiaddr, error) {
	network, hostport, ok := tcpNetAddr(addr)
	if !ok {
		return address.Multiaddr{}, transport.ErrUnavailable
	}

	ln, err := net.Listen(network, hostport)
	if err != nil {
		return address.Multiaddr{}, fmt.Errorf("tcp: listen %s: %w", hostport, err)
	}

	bound := boundMultiaddr(addr, ln.Addr())

	t.mu.Lock()
	t.listeners[bound.String()] = ln
	t.mu.Unlock()

	go t.acceptLoop(ln, bound, onAccept, cancel)

	return bound, nil
}

func (t *Transport) acceptLoop(ln net.Listener, local address.Multiaddr, onAccept transport.AcceptFunc, cancel <-chan struct{}) {
	go func() {
		<-cancel
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if t.closed.Load() {
				return
			}
			select {
			case <-cancel:
				return
			default:
				log.Warn("accept failed", "addr", local.String(), "error", err)
				return
			}
		}

		remote := remoteMultiaddr(local, conn.RemoteAddr())
		onAccept(conn, local, remote)
	}
}

// Close shuts down every listener this transport opened.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var lastErr error
	for k, ln := range t.listeners {
		if err := ln.Close(); err != nil {
			lastErr = err
		}
		delete(t.listeners, k)
	}
	return lastErr
}

func tcpNetAddr(addr address.Multiaddr) (network, hostport string, ok bool) {
	var host string
	network = "tcp"
	if v, found := addr.ValueForProtocol(address.ProtoIP4); found {
		host, network = v, "tcp4"
	} else if v, found := addr.ValueForProtocol(address.ProtoIP6); found {
		host, network = v, "tcp6"
	} else {
		return "", "", false
	}

	port, found := addr.ValueForProtocol(address.ProtoTCP)
	if !found {
		return "", "", false
	}

	return network, net.JoinHostPort(host, port), true
}

func boundMultiaddr(requested address.Multiaddr, bound net.Addr) address.Multiaddr {
	tcpAddr, ok := bound.(*net.TCPAddr)
	if !ok {
		return requested
	}

	proto := address.ProtoIP4
	if tcpAddr.IP.To4() == nil {
		proto = address.ProtoIP6
	}

	segs := make([]address.Segment, 0, 2)
	segs = append(segs, address.Segment{Proto: proto, Value: tcpAddr.IP.String()})
	segs = append(segs, address.Segment{Proto: address.ProtoTCP, Value: strconv.Itoa(tcpAddr.Port)})
	return address.New(segs...)
}

func remoteMultiaddr(local address.Multiaddr, remote net.Addr) address.Multiaddr {
	tcpAddr, ok := remote.(*net.TCPAddr)
	if !ok {
		return local
	}
	proto := address.ProtoIP4
	if tcpAddr.IP.To4() == nil {
		proto = address.ProtoIP6
	}
	return address.New(
		address.Segment{Proto: proto, Value: tcpAddr.IP.String()},
		address.Segment{Proto: address.ProtoTCP, Value: strconv.Itoa(tcpAddr.Port)},
	)
}
