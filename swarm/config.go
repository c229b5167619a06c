package swarm

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cobwebnet/cobweb/conn"
)

// ErrInvalidConfig is returned by Validate and by Option application when
// a supplied value is out of range.
var ErrInvalidConfig = errors.New("swarm: invalid config")

// Config tunes Swarm's timing and concurrency behavior.
type Config struct {
	// DialTimeout bounds a single transport.Connect attempt.
	DialTimeout time.Duration

	// MaxConcurrentDials bounds how many transport.Connect calls may be
	// in flight at once across the whole Swarm.
	MaxConcurrentDials int64

	// NewStreamTimeout bounds Handshaker.Initiate and Handshaker.Respond.
	NewStreamTimeout time.Duration
}

// DefaultConfig returns the defaults used when NewSwarm is given no
// WithConfig option.
func DefaultConfig() *Config {
	return &Config{
		DialTimeout:        15 * time.Second,
		MaxConcurrentDials: 100,
		NewStreamTimeout:   15 * time.Second,
	}
}

// Validate reports whether every field holds a usable value.
func (c *Config) Validate() error {
	if c.DialTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxConcurrentDials <= 0 {
		return ErrInvalidConfig
	}
	if c.NewStreamTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Option configures a Swarm at construction time.
type Option func(*Swarm) error

// WithConfig overrides the default Config.
func WithConfig(cfg *Config) Option {
	return func(s *Swarm) error {
		if cfg == nil {
			return ErrInvalidConfig
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.config = cfg
		return nil
	}
}

// WithClock overrides the clock.Clock used to time successful Connect calls
// for the dial duration metric, letting tests inject clock.NewMock(). Dial
// and handshake timeouts use context deadlines and do not read this clock.
func WithClock(c clock.Clock) Option {
	return func(s *Swarm) error {
		s.clock = c
		return nil
	}
}

// WithHandshaker overrides the default no-op Handshaker run on every
// dialed or accepted connection.
func WithHandshaker(h conn.Handshaker) Option {
	return func(s *Swarm) error {
		s.handshaker = h
		return nil
	}
}

// WithMetrics registers the Swarm's prometheus collectors against reg. A
// Swarm built without this option records no metrics.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Swarm) error {
		s.metrics = newMetrics(reg)
		return nil
	}
}
