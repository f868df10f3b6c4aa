package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dylanlt/poverty-explorer/internal/climate"
	"github.com/dylanlt/poverty-explorer/internal/config"
	"github.com/dylanlt/poverty-explorer/internal/engine"
	"github.com/dylanlt/poverty-explorer/internal/events"
	"github.com/dylanlt/poverty-explorer/internal/store"
)

func NewRouter(s store.Store, ev events.Client, cl climate.Client, runner *engine.Runner, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	score := NewScoreHandler(cfg.Engine.Cutoff)
	cells := NewCellsHandler(s)
	runs := NewRunsHandler(s, runner, cfg.Engine.Cutoff, cfg.Engine.Enhanced)
	admin := NewAdminHandler(s, ev, cl, cfg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/score", score.Score)
		r.Post("/compare", score.Compare)

		r.Get("/cells", cells.List)
		r.Get("/cells/{id}", cells.Get)
		r.Get("/cells/{id}/weights", cells.Weights)
		r.Get("/cells/{id}/households", cells.Households)

		r.Post("/runs", runs.Create)
		r.Get("/runs", runs.List)
		r.Get("/runs/{id}", runs.Get)
		r.Get("/runs/{id}/cells", runs.CellSummaries)

		r.Get("/stats", admin.Stats)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Post("/seed", admin.Seed)
			r.Post("/cells/{id}/refresh-climate", admin.RefreshClimate)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
