package api

import (
	"encoding/json"
	"net/http"

	"github.com/atlasfm/atlas/internal/consequence"
	"github.com/atlasfm/atlas/internal/reliability"
	"github.com/atlasfm/atlas/internal/risk"
)

// RiskHandler exposes the pure calculators directly, without touching
// storage: callers supply inputs and get the scoring result back.
type RiskHandler struct {
	pof *reliability.Calculator
	cof *consequence.Calculator
}

func NewRiskHandler(pof *reliability.Calculator, cof *consequence.Calculator) *RiskHandler {
	return &RiskHandler{pof: pof, cof: cof}
}

// ComputePoF handles POST /api/v1/risk/pof
func (h *RiskHandler) ComputePoF(w http.ResponseWriter, r *http.Request) {
	var in reliability.FactorInputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, h.pof.ComputePoF(in))
}

// ComputeCoF handles POST /api/v1/risk/cof
func (h *RiskHandler) ComputeCoF(w http.ResponseWriter, r *http.Request) {
	var in consequence.Inputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, h.cof.ComputeCoF(in))
}

type classifyRequest struct {
	PoF float64 `json:"pof"`
	CoF float64 `json:"cof"`
}

// Classify handles POST /api/v1/risk/classify
func (h *RiskHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, risk.Classify(req.PoF, req.CoF))
}

// Matrix handles GET /api/v1/risk/matrix
func (h *RiskHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, risk.Matrix())
}
