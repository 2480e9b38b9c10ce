package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cwrk-planet/session-service/internal/transport/ws"
	"github.com/cwrk-planet/session-service/pkg/metrics"
)

func NewRouter(h *Handler, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
	}))

	// WS endpoint
	r.Get("/ws", wsServer.HandleWS)

	// admin surface
	r.Group(func(ar chi.Router) {
		ar.Use(middlewareChi.Timeout(30 * time.Second))

		ar.Route("/rooms", func(rm chi.Router) {
			rm.Get("/", h.ListRooms)
			rm.Delete("/{id}", h.CloseRoom)
		})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
