package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atlasfm/atlas/internal/composite"
	"github.com/atlasfm/atlas/internal/consequence"
	"github.com/atlasfm/atlas/internal/registry"
	"github.com/atlasfm/atlas/internal/reliability"
	"github.com/atlasfm/atlas/internal/store"
)

// AssetsHandler manages per-asset inputs and scores and joins the asset
// registry with locally stored composite scores.
type AssetsHandler struct {
	store    store.Store
	registry registry.Client
	scorer   *composite.Scorer
}

func NewAssetsHandler(s store.Store, reg registry.Client, scorer *composite.Scorer) *AssetsHandler {
	return &AssetsHandler{store: s, registry: reg, scorer: scorer}
}

type upsertInputsRequest struct {
	Reliability reliability.FactorInputs `json:"reliability"`
	Consequence consequence.Inputs       `json:"consequence"`
}

// UpsertInputs handles PUT /api/v1/assets/{id}/inputs
func (h *AssetsHandler) UpsertInputs(w http.ResponseWriter, r *http.Request) {
	assetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid asset id"})
		return
	}
	var req upsertInputsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	in := &store.AssetFactorInputs{
		AssetID:     assetID,
		Reliability: req.Reliability,
		Consequence: req.Consequence,
	}
	if err := h.store.UpsertFactorInputs(r.Context(), in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

type upsertScoreRequest struct {
	CriterionID uuid.UUID `json:"criterion_id"`
	Score       float64   `json:"score"`
}

// UpsertScore handles PUT /api/v1/assets/{id}/scores. The asset's
// composite score is recomputed immediately so readers never see a
// stale blend.
func (h *AssetsHandler) UpsertScore(w http.ResponseWriter, r *http.Request) {
	assetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid asset id"})
		return
	}
	var req upsertScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.CriterionID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "criterion_id is required"})
		return
	}
	if req.Score < 0 || req.Score > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "score must be between 0 and 100"})
		return
	}
	if err := h.store.UpsertCriterionScore(r.Context(), assetID, req.CriterionID, req.Score); err != nil {
		writeError(w, err)
		return
	}
	if err := h.scorer.RecalculateAsset(r.Context(), assetID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"asset_id":     assetID,
		"criterion_id": req.CriterionID,
		"score":        req.Score,
	})
}

type assetWithScore struct {
	registry.Asset
	CompositeScore *float64 `json:"composite_score,omitempty"`
}

// List handles GET /api/v1/assets: the registry listing joined with
// stored composite scores.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	assets, err := h.registry.ListAssets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	composites, err := h.store.ListCompositeScores(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]assetWithScore, 0, len(assets))
	for _, a := range assets {
		row := assetWithScore{Asset: a}
		if id, err := uuid.Parse(a.ID); err == nil {
			if score, ok := composites[id]; ok {
				s := score
				row.CompositeScore = &s
			}
		}
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": out, "count": len(out)})
}
