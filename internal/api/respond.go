package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atlasfm/atlas/internal/criteria"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses: validation failures are
// the caller's fault, invariant violations and lost races are conflicts.
func writeError(w http.ResponseWriter, err error) {
	var ve *criteria.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
		return
	}
	var iv *criteria.InvariantViolation
	if errors.As(err, &iv) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":        iv.Error(),
			"rule":         iv.Rule,
			"active_count": iv.ActiveCount,
			"weight_sum":   iv.WeightSum,
		})
		return
	}
	if criteria.IsConflict(err) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
