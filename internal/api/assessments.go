package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atlasfm/atlas/internal/consequence"
	"github.com/atlasfm/atlas/internal/events"
	"github.com/atlasfm/atlas/internal/reliability"
	"github.com/atlasfm/atlas/internal/risk"
	"github.com/atlasfm/atlas/internal/store"
)

// AssessmentsHandler runs full asset assessments from stored factor inputs
// and owns the assessment status transitions.
type AssessmentsHandler struct {
	store  store.Store
	events events.Client
	pof    *reliability.Calculator
	cof    *consequence.Calculator
}

func NewAssessmentsHandler(s store.Store, ev events.Client, pof *reliability.Calculator, cof *consequence.Calculator) *AssessmentsHandler {
	return &AssessmentsHandler{store: s, events: ev, pof: pof, cof: cof}
}

// Assess handles POST /api/v1/assets/{id}/assess: reads the asset's stored
// factor inputs, computes PoF/CoF, classifies, and persists a draft
// assessment.
func (h *AssessmentsHandler) Assess(w http.ResponseWriter, r *http.Request) {
	assetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid asset id"})
		return
	}

	inputs, err := h.store.GetFactorInputs(r.Context(), assetID)
	if err != nil {
		writeError(w, err)
		return
	}
	if inputs == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no factor inputs recorded for asset"})
		return
	}

	pofResult := h.pof.ComputePoF(inputs.Reliability)
	cofResult := h.cof.ComputeCoF(inputs.Consequence)
	score := risk.Classify(pofResult.PoF, cofResult.CoF)

	assessment := &risk.Assessment{
		AssetID:   assetID,
		PoF:       score.PoF,
		CoF:       score.CoF,
		RiskScore: score.RiskScore,
		Level:     score.Level,
		Justification: fmt.Sprintf("PoF %.2f: %s. CoF %.2f (%s criticality): %s.",
			pofResult.PoF, pofResult.Justification,
			cofResult.CoF, cofResult.CriticalityLevel, cofResult.Justification),
		Status: risk.AssessmentDraft,
	}
	if err := h.store.CreateAssessment(r.Context(), assessment); err != nil {
		writeError(w, err)
		return
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectAssessmentCreated(assetID.String()), events.AssessmentCreatedEvent{
			AssessmentID: assessment.ID.String(),
			AssetID:      assetID.String(),
			PoF:          assessment.PoF,
			CoF:          assessment.CoF,
			RiskScore:    assessment.RiskScore,
			RiskLevel:    string(assessment.Level),
		})
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"assessment": assessment,
		"pof":        pofResult,
		"cof":        cofResult,
		"risk":       score,
	})
}

// Get handles GET /api/v1/assessments/{id}
func (h *AssessmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	a, err := h.store.GetAssessment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "assessment not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// List handles GET /api/v1/assessments
func (h *AssessmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.AssessmentFilter{}
	if v := r.URL.Query().Get("status"); v != "" {
		status := risk.AssessmentStatus(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("asset_id"); v != "" {
		assetID, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid asset_id"})
			return
		}
		filter.AssetID = &assetID
	}

	assessments, err := h.store.ListAssessments(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if assessments == nil {
		assessments = []*risk.Assessment{}
	}
	writeJSON(w, http.StatusOK, assessments)
}

// Approve handles POST /api/v1/assessments/{id}/approve
func (h *AssessmentsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, risk.AssessmentApproved)
}

// Archive handles POST /api/v1/assessments/{id}/archive
func (h *AssessmentsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, risk.AssessmentArchived)
}

func (h *AssessmentsHandler) transition(w http.ResponseWriter, r *http.Request, to risk.AssessmentStatus) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	a, err := h.store.GetAssessment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "assessment not found"})
		return
	}
	if err := a.Transition(to); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	if err := h.store.UpdateAssessmentStatus(r.Context(), id, to); err != nil {
		writeError(w, err)
		return
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectAssessmentStatus(id.String(), string(to)), events.AssessmentStatusEvent{
			AssessmentID: id.String(),
			AssetID:      a.AssetID.String(),
			Status:       string(to),
			Actor:        r.Header.Get("X-Actor-ID"),
		})
	}

	writeJSON(w, http.StatusOK, a)
}
