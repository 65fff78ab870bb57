package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewPresence_RegistersCollectors(t *testing.T) {
	req := require.New(t)

	// Given
	reg := prometheus.NewRegistry()
	m := NewPresence(reg)

	// When
	m.Connections.Inc()
	m.Deliveries.WithLabelValues("chat").Add(2)
	m.InboundMessages.WithLabelValues("move").Inc()

	// Then
	req.Equal(float64(1), testutil.ToFloat64(m.Connections))
	req.Equal(float64(2), testutil.ToFloat64(m.Deliveries.WithLabelValues("chat")))

	count, err := testutil.GatherAndCount(reg, "metaverse_connections", "metaverse_deliveries_total")
	req.NoError(err)
	req.Equal(2, count)
}

func TestNewPresence_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPresence(reg)

	require.Panics(t, func() { NewPresence(reg) })
}

func TestNewHTTP(t *testing.T) {
	req := require.New(t)
	reg := prometheus.NewRegistry()
	m := NewHTTP(reg)

	m.Requests.WithLabelValues("/api/stats", "GET", "200").Inc()
	m.Duration.WithLabelValues("/api/stats", "GET").Observe(0.01)

	req.Equal(float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("/api/stats", "GET", "200")))
	req.Equal(1, testutil.CollectAndCount(m.Duration))
}
