// Package ws implements transport.Transport over WebSocket, the
// browser-and-firewall-friendly transport named alongside tcp in
// spec.md §7. The teacher repo has no WebSocket transport of its own; this
// one follows the shape of its tcp transport instead, swapping the net
// listener/dialer for gorilla/websocket.
package ws

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cobwebnet/cobweb/address"
	cobweblog "github.com/cobwebnet/cobweb/log"
	"github.com/cobwebnet/cobweb/transport"
)

var log = cobweblog.Logger("transport.ws")

// Transport dials and accepts WebSocket connections addressed as
// "/ip4|ip6/<host>/tcp/<port>/ws/<value>" or ".../wss/<value>". The ws/wss
// segment's value is not interpreted; addresses this transport builds
// use "1".
type Transport struct {
	dialer    *websocket.Dialer
	upgrader  websocket.Upgrader
	tlsSecure bool

	mu      sync.Mutex
	servers map[string]*http.Server
	closed  atomic.Bool
}

var _ transport.Transport = (*Transport)(nil)

// New returns a Transport. handshakeTimeout bounds both the outbound
// WebSocket upgrade and the TCP dial beneath it.
func New(handshakeTimeout time.Duration) *Transport {
	return &Transport{
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		upgrader: websocket.Upgrader{
			HandshakeTimeout: handshakeTimeout,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		servers: make(map[string]*http.Server),
	}
}

// Connect implements transport.Transport.
func (t *Transport) Connect(ctx context.Context, addr address.Multiaddr) (transport.Stream, error) {
	u, ok := wsURL(addr)
	if !ok {
		return nil, transport.ErrUnavailable
	}

	conn, _, err := t.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("ws: dial %s: %w", u, err)
	}
	return wsStream{Conn: conn}, nil
}

// Listen implements transport.Transport.
func (t *Transport) Listen(addr address.Multiaddr, onAccept transport.AcceptFunc, cancel <-chan struct{}) (address.Multiaddr, error) {
	_, hostport, secure, ok := wsNetAddr(addr)
	if !ok {
		return address.Multiaddr{}, transport.ErrUnavailable
	}

	ln, err := net.Listen("tcp", hostport)
	if err != nil {
		return address.Multiaddr{}, fmt.Errorf("ws: listen %s: %w", hostport, err)
	}

	bound := boundMultiaddr(ln.Addr(), secure)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := t.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		remote := remoteMultiaddr(r.RemoteAddr, secure)
		onAccept(wsStream{Conn: conn}, bound, remote)
	})
	srv := &http.Server{Handler: mux}

	t.mu.Lock()
	t.servers[bound.String()] = srv
	t.mu.Unlock()

	go func() {
		<-cancel
		srv.Close()
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !t.closed.Load() {
			select {
			case <-cancel:
			default:
				log.Warn("serve failed", "addr", bound.String(), "error", err)
			}
		}
	}()

	return bound, nil
}

// Close shuts down every server this transport started.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var lastErr error
	for k, srv := range t.servers {
		if err := srv.Close(); err != nil {
			lastErr = err
		}
		delete(t.servers, k)
	}
	return lastErr
}

type wsStream struct {
	*websocket.Conn
}

func (s wsStream) Read(p []byte) (int, error) {
	_, r, err := s.Conn.NextReader()
	if err != nil {
		return 0, err
	}
	return r.Read(p)
}

func (s wsStream) Write(p []byte) (int, error) {
	if err := s.Conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func wsNetAddr(addr address.Multiaddr) (network, hostport string, secure, ok bool) {
	var host string
	if v, found := addr.ValueForProtocol(address.ProtoIP4); found {
		host = v
	} else if v, found := addr.ValueForProtocol(address.ProtoIP6); found {
		host = v
	} else {
		return "", "", false, false
	}

	port, found := addr.ValueForProtocol(address.ProtoTCP)
	if !found {
		return "", "", false, false
	}

	if addr.HasProtocol(address.ProtoWSS) {
		secure = true
	} else if !addr.HasProtocol(address.ProtoWS) {
		return "", "", false, false
	}

	return "tcp", net.JoinHostPort(host, port), secure, true
}

func wsURL(addr address.Multiaddr) (*url.URL, bool) {
	_, hostport, secure, ok := wsNetAddr(addr)
	if !ok {
		return nil, false
	}
	scheme := "ws"
	if secure {
		scheme = "wss"
	}
	return &url.URL{Scheme: scheme, Host: hostport, Path: "/"}, true
}

func boundMultiaddr(bound net.Addr, secure bool) address.Multiaddr {
	tcpAddr, ok := bound.(*net.TCPAddr)
	if !ok {
		return address.Multiaddr{}
	}
	proto := address.ProtoIP4
	if tcpAddr.IP.To4() == nil {
		proto = address.ProtoIP6
	}
	wsProto := address.ProtoWS
	if secure {
		wsProto = address.ProtoWSS
	}
	return address.New(
		address.Segment{Proto: proto, Value: tcpAddr.IP.String()},
		address.Segment{Proto: address.ProtoTCP, Value: strconv.Itoa(tcpAddr.Port)},
		address.Segment{Proto: wsProto, Value: "1"},
	)
}

func remoteMultiaddr(remoteAddr string, secure bool) address.Multiaddr {
	host, port, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return address.Multiaddr{}
	}
	proto := address.ProtoIP4
	if net.ParseIP(host) != nil && net.ParseIP(host).To4() == nil {
		proto = address.ProtoIP6
	}
	wsProto := address.ProtoWS
	if secure {
		wsProto = address.ProtoWSS
	}
	return address.New(
		address.Segment{Proto: proto, Value: host},
		address.Segment{Proto: address.ProtoTCP, Value: port},
		address.Segment{Proto: wsProto, Value: "1"},
	)
}
