package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atlasfm/atlas/internal/criteria"
)

// AuditLister reads the append-only audit trail.
type AuditLister interface {
	ListAudit(ctx context.Context, criterionID uuid.UUID) ([]*criteria.AuditEntry, error)
}

// CriteriaHandler exposes the criteria lifecycle to administrators. All
// mutations go through the lifecycle manager, never straight to storage.
type CriteriaHandler struct {
	manager *criteria.Manager
	audit   AuditLister
}

func NewCriteriaHandler(m *criteria.Manager, audit AuditLister) *CriteriaHandler {
	return &CriteriaHandler{manager: m, audit: audit}
}

// List handles GET /api/v1/criteria
func (h *CriteriaHandler) List(w http.ResponseWriter, r *http.Request) {
	set, err := h.manager.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

type createCriterionRequest struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Create handles POST /api/v1/criteria
func (h *CriteriaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCriterionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	result, err := h.manager.Create(r.Context(), req.Name, req.Weight, r.Header.Get("X-Actor-ID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type lifecycleRequest struct {
	Reason       string `json:"reason,omitempty"`
	Confirmation string `json:"confirmation,omitempty"`
}

// Remove handles POST /api/v1/criteria/{id}/remove
func (h *CriteriaHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id uuid.UUID, actor string, req lifecycleRequest) (*criteria.MutationResult, error) {
		return h.manager.Remove(ctx, id, actor, req.Reason)
	})
}

// Disable handles POST /api/v1/criteria/{id}/disable
func (h *CriteriaHandler) Disable(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id uuid.UUID, actor string, req lifecycleRequest) (*criteria.MutationResult, error) {
		return h.manager.Disable(ctx, id, actor, req.Reason)
	})
}

// Enable handles POST /api/v1/criteria/{id}/enable
func (h *CriteriaHandler) Enable(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id uuid.UUID, actor string, req lifecycleRequest) (*criteria.MutationResult, error) {
		return h.manager.Enable(ctx, id, actor, req.Reason)
	})
}

// Delete handles POST /api/v1/criteria/{id}/delete. The body must carry
// the exact confirmation token.
func (h *CriteriaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id uuid.UUID, actor string, req lifecycleRequest) (*criteria.MutationResult, error) {
		return h.manager.Delete(ctx, id, actor, req.Confirmation, req.Reason)
	})
}

func (h *CriteriaHandler) mutate(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id uuid.UUID, actor string, req lifecycleRequest) (*criteria.MutationResult, error)) {

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid criterion id"})
		return
	}

	var req lifecycleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	result, err := op(r.Context(), id, r.Header.Get("X-Actor-ID"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Audit handles GET /api/v1/criteria/{id}/audit
func (h *CriteriaHandler) Audit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid criterion id"})
		return
	}
	entries, err := h.audit.ListAudit(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*criteria.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
