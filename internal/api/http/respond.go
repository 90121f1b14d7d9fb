package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/logger"
	"voltride-backend/internal/security"
)

type errorResponse struct {
	Error string `json:"error"`
	// Set on booking conflicts so the client can show what is in the way.
	ConflictingRef string `json:"conflicting_ref,omitempty"`
	UnitID         int32  `json:"unit_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps domain errors onto HTTP statuses. Conflicts and
// immutability violations are 409, bad input is 400, a transition the
// lifecycle does not allow is 422.
func writeError(w http.ResponseWriter, err error) {
	var conflict *domain.ConflictError
	var validation *domain.ValidationError
	var transition *domain.InvalidTransitionError
	var immutable *domain.ImmutabilityError

	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:          conflict.Error(),
			ConflictingRef: conflict.ConflictingRef,
			UnitID:         conflict.UnitID,
		})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Error()})
	case errors.As(err, &transition):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: transition.Error()})
	case errors.As(err, &immutable):
		writeJSON(w, http.StatusConflict, errorResponse{Error: immutable.Error()})
	case errors.Is(err, sql.ErrNoRows):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, security.ErrExpiredToken), errors.Is(err, security.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		logger.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "malformed JSON"}
	}
	return nil
}
