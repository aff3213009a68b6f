package hub

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestMetricsRecord verifies the hub instruments accumulate as expected.
func TestMetricsRecord(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.setConnections(3)
	m.messageReceived()
	m.broadcast(2, 1)
	m.broadcast(3, 0)
	m.disconnected(CleanDisconnect)
	m.disconnected(AbnormalFault)
	m.disconnected(AbnormalFault)

	assert.Equal(t, 3.0, promtest.ToFloat64(m.connections))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.messages))
	assert.Equal(t, 5.0, promtest.ToFloat64(m.deliveries.WithLabelValues("delivered")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.deliveries.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.disconnects.WithLabelValues("clean")))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.disconnects.WithLabelValues("fault")))
}

// TestNilMetrics verifies a nil *Metrics is safe to use.
func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.setConnections(1)
		m.messageReceived()
		m.broadcast(1, 1)
		m.disconnected(CleanDisconnect)
	})
}
