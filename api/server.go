/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the companion web UI

SECURITY NOTE:
  No authentication middleware. The server binds to localhost for local
  development and debugging of the wallet engine.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", h.GetWallet)
			r.Post("/earn", h.Earn)
			r.Post("/spend", h.Spend)
			r.Post("/urgent-spend", h.UrgentSpend)
			r.Post("/free-usage", h.FreeUsage)
			r.Get("/can-use", h.CanUse)
			r.Post("/reset", h.ResetWallet)
		})

		r.Route("/limits", func(r chi.Router) {
			r.Get("/total", h.GetTotalLimit)
			r.Put("/total", h.SetTotalLimit)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/earnings", h.EarningHistory)
			r.Get("/spending", h.SpendingHistory)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/today", h.TodayStats)
			r.Get("/week", h.WeekStats)
			r.Get("/weekly-daily", h.WeeklyDailyStats)
			r.Get("/day/{date}", h.DayStats)
		})

		r.Route("/streak", func(r chi.Router) {
			r.Get("/", h.GetStreak)
			r.Post("/activity", h.RecordActivity)
			r.Post("/shown", h.MarkStreakShown)
		})

		r.Post("/sync", h.Sync)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
