// Package metrics exposes relay counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transports and outcomes used as label values.
const (
	TransportHTTP = "http"
	TransportWS   = "ws"

	OutcomeDelivered        = "delivered"
	OutcomeRejected         = "rejected"
	OutcomeGenerationFailed = "generation_failed"

	StageInbound  = "inbound"
	StageOutbound = "outbound"
)

// Metrics owns its registry so that several instances can live in one
// process (tests create one per case).
type Metrics struct {
	registry *prometheus.Registry

	exchanges           *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	fallbackWrites      prometheus.Counter
	generationFailures  prometheus.Counter
	liveConnections     prometheus.Gauge
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exchanges_total",
				Help:      "Message exchanges by transport and outcome",
			},
			[]string{"transport", "outcome"},
		),
		persistenceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_failures_total",
				Help:      "Messages that could not be stored, by stage",
			},
			[]string{"stage"},
		),
		fallbackWrites: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallback_writes_total",
				Help:      "Messages written to the in-memory store after a durable write failed",
			},
		),
		generationFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_failures_total",
				Help:      "Failed calls to the reply collaborator",
			},
		),
		liveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_connections",
				Help:      "Open WebSocket connections",
			},
		),
	}

	m.registry.MustRegister(
		m.exchanges,
		m.persistenceFailures,
		m.fallbackWrites,
		m.generationFailures,
		m.liveConnections,
		collectors.NewGoCollector(),
	)

	return m
}

func (m *Metrics) Exchange(transport, outcome string) {
	m.exchanges.WithLabelValues(transport, outcome).Inc()
}

func (m *Metrics) PersistenceFailure(stage string) {
	m.persistenceFailures.WithLabelValues(stage).Inc()
}

// FallbackWrite satisfies messages.Recorder.
func (m *Metrics) FallbackWrite() {
	m.fallbackWrites.Inc()
}

func (m *Metrics) GenerationFailure() {
	m.generationFailures.Inc()
}

func (m *Metrics) ConnectionOpened() { m.liveConnections.Inc() }
func (m *Metrics) ConnectionClosed() { m.liveConnections.Dec() }

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
