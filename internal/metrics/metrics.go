package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActionsTotal counts dispatched actions by type and outcome.
	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avalon_actions_total",
		Help: "Number of dispatched game actions.",
	}, []string{"type", "status"})

	// EventsTotal counts emitted domain events by type.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avalon_events_total",
		Help: "Number of emitted domain events.",
	}, []string{"type"})

	// ConnectionsActive tracks currently open websocket connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "avalon_connections_active",
		Help: "Currently open websocket connections.",
	})
)
