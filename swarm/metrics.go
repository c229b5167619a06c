package swarm

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Swarm's prometheus instrumentation. A nil *metrics
// (the zero Swarm, or one built without WithMetrics) means every method
// below is a no-op, so call sites never need a nil check.
type metrics struct {
	knownPeers   prometheus.Gauge
	connectedTo  prometheus.Gauge
	dialAttempts *prometheus.CounterVec
	dialDuration prometheus.Histogram
	accepts      *prometheus.CounterVec
}

// newMetrics registers a fresh set of collectors against reg. Passing the
// same reg to two Swarm instances would panic on duplicate registration,
// by design: callers needing multiple swarms in one process should use
// separate registries, per transport.Registry's own "no shared globals"
// rationale.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		knownPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cobweb",
			Subsystem: "swarm",
			Name:      "known_peers",
			Help:      "Number of peers currently in the peer table.",
		}),
		connectedTo: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cobweb",
			Subsystem: "swarm",
			Name:      "connected_peers",
			Help:      "Number of peers with a live stream.",
		}),
		dialAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cobweb",
			Subsystem: "swarm",
			Name:      "dial_attempts_total",
			Help:      "Dial attempts by outcome.",
		}, []string{"outcome"}),
		dialDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cobweb",
			Subsystem: "swarm",
			Name:      "dial_duration_seconds",
			Help:      "Duration of successful connect() calls.",
		}),
		accepts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cobweb",
			Subsystem: "swarm",
			Name:      "accepts_total",
			Help:      "Inbound connections accepted, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.knownPeers, m.connectedTo, m.dialAttempts, m.dialDuration, m.accepts)
	return m
}

func (m *metrics) setKnownPeers(n int) {
	if m == nil {
		return
	}
	m.knownPeers.Set(float64(n))
}

func (m *metrics) setConnectedPeers(n int) {
	if m == nil {
		return
	}
	m.connectedTo.Set(float64(n))
}

func (m *metrics) observeDial(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.dialAttempts.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		m.dialDuration.Observe(seconds)
	}
}

func (m *metrics) observeAccept(outcome string) {
	if m == nil {
		return
	}
	m.accepts.WithLabelValues(outcome).Inc()
}
