// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coachcore/privacyd/internal/domain/anonymize"
	"github.com/coachcore/privacyd/internal/domain/model"
	"github.com/coachcore/privacyd/internal/domain/retention"
	"github.com/coachcore/privacyd/pkg/metrics"
)

// AnonymizeHandler handles synchronous anonymization requests.
type AnonymizeHandler struct {
	deps         Dependencies
	defaultLevel model.Level
}

// NewAnonymizeHandler creates a new anonymize handler.
func NewAnonymizeHandler(deps Dependencies, defaultLevel model.Level) *AnonymizeHandler {
	return &AnonymizeHandler{deps: deps, defaultLevel: defaultLevel}
}

// HandlePostAnonymize handles POST /anonymize requests. The transform
// runs inline; the complete result is returned to the caller and
// archived for its retention period like any job result.
func (h *AnonymizeHandler) HandlePostAnonymize(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_anonymize"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req anonymizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	category, _ := model.ParseCategory(req.Category)
	level := h.defaultLevel
	if req.Level != "" {
		level = model.ParseLevel(req.Level)
	}

	res, err := h.deps.Anonymize(r.Context(), req.Record, category, level)
	if err != nil {
		switch {
		case errors.Is(err, anonymize.ErrInvalidInput):
			metrics.RecordInvalidInput()
			writeError(w, http.StatusBadRequest, "invalid_input", Wrap(op, err))
		case errors.Is(err, retention.ErrUnknownCategory):
			metrics.RecordUnknownCategory()
			writeError(w, http.StatusBadRequest, "unknown_category", Wrap(op, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}
