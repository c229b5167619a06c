// Package main is a minimal demonstration entrypoint wiring a Swarm
// through fx. It exists to show the pieces connected end to end; a real
// CLI front-end (config files, presets, bootstrap lists) is out of scope.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/cobwebnet/cobweb/address"
	"github.com/cobwebnet/cobweb/address/dnsresolver"
	"github.com/cobwebnet/cobweb/identity"
	cobweblog "github.com/cobwebnet/cobweb/log"
	"github.com/cobwebnet/cobweb/swarm"
	"github.com/cobwebnet/cobweb/transport"
	"github.com/cobwebnet/cobweb/transport/tcp"
	"github.com/cobwebnet/cobweb/transport/ws"
)

var logger = cobweblog.Logger("cobwebd")

var (
	peerID     = flag.String("id", "", "local peer id (base58 text, required)")
	listenAddr = flag.String("listen", "/ip4/0.0.0.0/tcp/4001", "address to listen on, without /p2p/<id>")
	dial       = flag.String("dial", "", "optional peer address to dial on startup")
	useDNS     = flag.Bool("dns", false, "resolve /dns, /dns4 and /dns6 segments")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cobwebd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	if *peerID == "" {
		return fmt.Errorf("-id is required")
	}

	listen, err := address.Parse(*listenAddr)
	if err != nil {
		return fmt.Errorf("invalid -listen: %w", err)
	}

	id, err := identity.FromPeerIDString(*peerID)
	if err != nil {
		return fmt.Errorf("invalid -id: %w", err)
	}

	registry := transport.NewRegistry()
	registry.MustRegister("tcp", tcp.New(15*time.Second))
	registry.MustRegister("ws", ws.New(15*time.Second))
	registry.MustRegister("wss", ws.New(15*time.Second))

	var resolver address.Resolver = address.IdentityResolver{}
	if *useDNS {
		r, err := dnsresolver.New(dnsresolver.DefaultConfig())
		if err != nil {
			return fmt.Errorf("dns resolver: %w", err)
		}
		resolver = r
	}

	app := fx.New(
		fx.Supply(fx.Annotate(id, fx.As(new(address.Identity)))),
		fx.Supply(registry),
		fx.Supply(fx.Annotate(resolver, fx.As(new(address.Resolver)))),
		swarm.Module(),
		fx.Invoke(func(s *swarm.Swarm) error {
			bound, err := s.StartListening(listen)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			logger.Info("listening", "addr", bound.String())

			if *dial != "" {
				target, err := address.Parse(*dial)
				if err != nil {
					return fmt.Errorf("invalid -dial: %w", err)
				}
				peer, err := s.Connect(target, nil)
				if err != nil {
					return fmt.Errorf("dial %s: %w", *dial, err)
				}
				logger.Info("connected", "peer", peer.ID.String())
			}
			return nil
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}

	waitForSignal()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	return app.Stop(stopCtx)
}

func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}
