package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "metaverse"

// Presence holds the collectors the hub and sessions update.
type Presence struct {
	Connections       prometheus.Gauge
	Members           prometheus.Gauge
	OccupiedSpaces    prometheus.Gauge
	Broadcasts        prometheus.Counter
	Deliveries        *prometheus.CounterVec
	Pruned            prometheus.Counter
	InboundMessages   *prometheus.CounterVec
	MalformedMessages prometheus.Counter
	ThrottledMessages prometheus.Counter
}

// NewPresence registers the presence collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() so runs do not collide.
func NewPresence(reg prometheus.Registerer) *Presence {
	factory := promauto.With(reg)

	return &Presence{
		Connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Number of registered websocket connections.",
		}),
		Members: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "space_members",
			Help:      "Number of identities currently in a space.",
		}),
		OccupiedSpaces: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "occupied_spaces",
			Help:      "Number of spaces with at least one member.",
		}),
		Broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Broadcasts fanned out to a space.",
		}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Messages enqueued to a connection, by event type.",
		}, []string{"event"}),
		Pruned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_members_total",
			Help:      "Members removed because their connection was unreachable.",
		}),
		InboundMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_messages_total",
			Help:      "Decoded inbound messages, by type.",
		}, []string{"type"}),
		MalformedMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_messages_total",
			Help:      "Inbound frames dropped because they could not be decoded.",
		}),
		ThrottledMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttled_messages_total",
			Help:      "Inbound frames dropped by the per-connection rate limit.",
		}),
	}
}

// NewNop returns collectors registered nowhere.
func NewNop() *Presence {
	return NewPresence(prometheus.NewRegistry())
}
