package api

import (
	"errors"
	"net/http"

	"github.com/atlasfm/atlas/internal/recalc"
	"github.com/atlasfm/atlas/internal/risk"
	"github.com/atlasfm/atlas/internal/store"
)

// PortfolioHandler serves portfolio-level aggregates and triggers
// full recalculations.
type PortfolioHandler struct {
	store  store.Store
	engine *recalc.Engine
}

func NewPortfolioHandler(s store.Store, engine *recalc.Engine) *PortfolioHandler {
	return &PortfolioHandler{store: s, engine: engine}
}

// Summary handles GET /api/v1/portfolio/summary. It aggregates every
// stored assessment into a risk distribution.
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.store.ListAssessments(r.Context(), store.AssessmentFilter{Limit: 10000})
	if err != nil {
		writeError(w, err)
		return
	}
	scores := make([]risk.Score, 0, len(assessments))
	for _, a := range assessments {
		scores = append(scores, a.ScoreOf())
	}
	writeJSON(w, http.StatusOK, risk.Aggregate(scores))
}

// Recalculate handles POST /api/v1/portfolio/recalculate. A partial
// batch failure is still a completed recalculation; the per-asset
// failures ride along in the response.
func (h *PortfolioHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.RecalculatePortfolio(r.Context())
	if err != nil && !isPartialFailure(err) {
		writeError(w, err)
		return
	}
	resp := map[string]any{"recalc": summary}
	if err != nil {
		resp["partial_failure"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /api/v1/stats: the current distribution plus the
// composite score table, for dashboards.
func (h *PortfolioHandler) Stats(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.store.ListAssessments(r.Context(), store.AssessmentFilter{Limit: 10000})
	if err != nil {
		writeError(w, err)
		return
	}
	scores := make([]risk.Score, 0, len(assessments))
	for _, a := range assessments {
		scores = append(scores, a.ScoreOf())
	}

	composites, err := h.store.ListCompositeScores(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	set, err := h.store.GetCriteriaSet(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"portfolio":        risk.Aggregate(scores),
		"composite_scores": composites,
		"criteria": map[string]any{
			"generation":   set.Generation,
			"active_count": set.ActiveCount(),
			"weight_sum":   set.ActiveWeightSum(),
		},
	})
}

func isPartialFailure(err error) bool {
	var pf *recalc.PartialBatchFailure
	return errors.As(err, &pf)
}
