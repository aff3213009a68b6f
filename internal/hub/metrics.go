package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the hub's Prometheus instruments. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	connections prometheus.Gauge
	messages    prometheus.Counter
	deliveries  *prometheus.CounterVec
	disconnects *prometheus.CounterVec
}

// NewMetrics registers the hub metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "webhooker",
			Subsystem: "hub",
			Name:      "connections",
			Help:      "Number of registered WebSocket connections.",
		}),
		messages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "webhooker",
			Subsystem: "hub",
			Name:      "messages_received_total",
			Help:      "Inbound text messages relayed to the connection set.",
		}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webhooker",
			Subsystem: "hub",
			Name:      "deliveries_total",
			Help:      "Per-recipient broadcast outcomes.",
		}, []string{"outcome"}),
		disconnects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webhooker",
			Subsystem: "hub",
			Name:      "disconnects_total",
			Help:      "Connections that left the hub, by kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) setConnections(n int) {
	if m == nil {
		return
	}
	m.connections.Set(float64(n))
}

func (m *Metrics) messageReceived() {
	if m == nil {
		return
	}
	m.messages.Inc()
}

func (m *Metrics) broadcast(delivered, dropped int) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues("delivered").Add(float64(delivered))
	if dropped > 0 {
		m.deliveries.WithLabelValues("dropped").Add(float64(dropped))
	}
}

func (m *Metrics) disconnected(kind FaultKind) {
	if m == nil {
		return
	}
	m.disconnects.WithLabelValues(kind.String()).Inc()
}
