package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"collabroom/internal/api"
	"collabroom/internal/metrics"
	"collabroom/internal/ratelimit"
)

func New(h *api.Handlers, allowOrigins []string, limiter *ratelimit.Limiter) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/api/v1/healthz", h.Health)
	r.Get("/api/v1/rooms/{id}/members", h.RoomMembers)
	r.Handle("/metrics", metrics.Handler())

	r.With(limiter.Middleware).Get("/ws/collab", h.CollabWS)

	return r
}
