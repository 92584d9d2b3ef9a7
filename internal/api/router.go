package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atlasfm/atlas/internal/composite"
	"github.com/atlasfm/atlas/internal/consequence"
	"github.com/atlasfm/atlas/internal/criteria"
	"github.com/atlasfm/atlas/internal/events"
	"github.com/atlasfm/atlas/internal/recalc"
	"github.com/atlasfm/atlas/internal/registry"
	"github.com/atlasfm/atlas/internal/reliability"
	"github.com/atlasfm/atlas/internal/store"
)

// Deps collects everything the router wires together.
type Deps struct {
	Store    store.Store
	Events   events.Client
	Registry registry.Client
	PoF      *reliability.Calculator
	CoF      *consequence.Calculator
	Manager  *criteria.Manager
	Scorer   *composite.Scorer
	Engine   *recalc.Engine
}

func NewRouter(d Deps, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	risk := NewRiskHandler(d.PoF, d.CoF)
	assessments := NewAssessmentsHandler(d.Store, d.Events, d.PoF, d.CoF)
	assets := NewAssetsHandler(d.Store, d.Registry, d.Scorer)
	portfolio := NewPortfolioHandler(d.Store, d.Engine)
	crit := NewCriteriaHandler(d.Manager, d.Store)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ActorIDMiddleware)

		r.Post("/risk/pof", risk.ComputePoF)
		r.Post("/risk/cof", risk.ComputeCoF)
		r.Post("/risk/classify", risk.Classify)
		r.Get("/risk/matrix", risk.Matrix)

		r.Get("/assets", assets.List)
		r.Put("/assets/{id}/inputs", assets.UpsertInputs)
		r.Put("/assets/{id}/scores", assets.UpsertScore)
		r.Post("/assets/{id}/assess", assessments.Assess)

		r.Get("/assessments", assessments.List)
		r.Get("/assessments/{id}", assessments.Get)

		r.Get("/portfolio/summary", portfolio.Summary)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))

			r.Get("/criteria", crit.List)
			r.Post("/criteria", crit.Create)
			r.Post("/criteria/{id}/remove", crit.Remove)
			r.Post("/criteria/{id}/disable", crit.Disable)
			r.Post("/criteria/{id}/enable", crit.Enable)
			r.Post("/criteria/{id}/delete", crit.Delete)
			r.Get("/criteria/{id}/audit", crit.Audit)

			r.Post("/assessments/{id}/approve", assessments.Approve)
			r.Post("/assessments/{id}/archive", assessments.Archive)

			r.Post("/portfolio/recalculate", portfolio.Recalculate)
			r.Get("/stats", portfolio.Stats)
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
