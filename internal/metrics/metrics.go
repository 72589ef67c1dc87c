package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "collab_active_connections",
		Help: "Open WebSocket connections.",
	})
	Rooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "collab_active_rooms",
		Help: "Rooms with at least one member.",
	})
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collab_events_total",
		Help: "Inbound events by type.",
	}, []string{"event"})
	Broadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collab_broadcast_frames_total",
		Help: "Frames fanned out to room members.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler { return promhttp.Handler() }
