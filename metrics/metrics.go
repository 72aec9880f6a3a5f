// Package metrics exposes relay counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relaychat"

// Metrics holds the relay's collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	Accepted      prometheus.Counter
	Connections   prometheus.Gauge
	Frames        *prometheus.CounterVec
	InvalidFrames prometheus.Counter
	RateLimited   prometheus.Counter
	Delivered     prometheus.Counter
	Dropped       prometheus.Counter
}

// New creates a Metrics instance with its own registry, so several hosts
// can coexist in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Connections accepted by the listener.",
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Currently open connections.",
		}),
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Decoded inbound frames by action.",
		}, []string{"action"}),
		InvalidFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_frames_total",
			Help:      "Inbound frames dropped because they could not be decoded.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Inbound frames dropped by the per-connection rate limit.",
		}),
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_delivered_total",
			Help:      "Rendered lines written to room members.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_dropped_total",
			Help:      "Members removed after a failed write.",
		}),
	}
	m.registry.MustRegister(
		m.Accepted,
		m.Connections,
		m.Frames,
		m.InvalidFrames,
		m.RateLimited,
		m.Delivered,
		m.Dropped,
	)
	return m
}

// RegisterRooms exposes the current room count through fn.
func (m *Metrics) RegisterRooms(fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rooms",
		Help:      "Rooms with at least one member.",
	}, fn))
}

// Handler exposes Prometheus metrics at /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
