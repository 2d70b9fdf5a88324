// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
)

// ExpiringHandler handles expiry-ordered listings of archived results.
type ExpiringHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewExpiringHandler creates a new expiring handler.
func NewExpiringHandler(deps Dependencies, maxLimit int) *ExpiringHandler {
	return &ExpiringHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetExpiring handles GET /expiring?limit=N requests, returning
// the N soonest-expiring archived results.
func (h *ExpiringHandler) HandleGetExpiring(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_expiring"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	summaries, err := h.deps.NextExpiring(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}
