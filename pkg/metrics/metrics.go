// Package metrics exposes Prometheus counters for the session layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "session_active_rooms",
		Help: "Rooms currently held in the registry.",
	})

	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_rooms_created_total",
		Help: "Rooms created since start.",
	})

	RoomsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_rooms_closed_total",
		Help: "Rooms closed since start, by reason.",
	}, []string{"reason"})

	Messages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_messages_total",
		Help: "Chat messages accepted since start.",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_create_rate_limited_total",
		Help: "Room creations denied by the rate limiter.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
