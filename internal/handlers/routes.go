package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the HTTP routes.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Admin-Token"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/standings", h.GetStandings)
		r.Get("/snapshots", h.GetSnapshots)
		r.Get("/rank/{user}", h.GetRank)
		r.Get("/pb/{size}/{user}", h.GetPersonalBests)
		r.Get("/movepb/{size}/{user}", h.GetMovePersonalBests)
		r.Get("/req/{size}/{tier}", h.GetRequirements)
		r.Get("/tiers", h.GetTiers)

		r.With(h.AdminAuthMiddleware).Post("/update", h.PostUpdate)
	})

	return r
}
