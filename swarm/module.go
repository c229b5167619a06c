package swarm

import (
	"context"

	"go.uber.org/fx"

	"github.com/cobwebnet/cobweb/address"
	"github.com/cobwebnet/cobweb/transport"
)

// Params collects a Swarm's dependencies for fx injection, mirroring the
// shape of the teacher's own swarm module params: a mandatory identity and
// registry, everything else optional with sane defaults.
type Params struct {
	fx.In

	Identity address.Identity
	Registry *transport.Registry
	Resolver address.Resolver `optional:"true"`
	Config   *Config          `optional:"true"`
}

// Module wires a *Swarm into an fx.App: Provide supplies it, and Invoke
// starts it on fx.Lifecycle OnStart and stops it on OnStop.
func Module() fx.Option {
	return fx.Module("swarm",
		fx.Provide(provideSwarm),
		fx.Invoke(registerLifecycle),
	)
}

func provideSwarm(p Params) (*Swarm, error) {
	var opts []Option
	if p.Config != nil {
		opts = append(opts, WithConfig(p.Config))
	}
	return NewSwarm(p.Identity, p.Registry, p.Resolver, opts...)
}

func registerLifecycle(lc fx.Lifecycle, s *Swarm) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
}
