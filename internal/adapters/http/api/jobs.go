// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/coachcore/privacyd/internal/domain/model"
)

// JobsHandler handles asynchronous job submissions.
type JobsHandler struct {
	deps         Dependencies
	defaultLevel model.Level
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies, defaultLevel model.Level) *JobsHandler {
	return &JobsHandler{deps: deps, defaultLevel: defaultLevel}
}

// HandlePostJob handles POST /jobs requests. Submissions are idempotent
// on job_id: a retry of an already-seen job acknowledges as duplicate
// without re-anonymizing.
func (h *JobsHandler) HandlePostJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_job"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first. Duplicate accounting
	// happens inside SeenAndRecord, not here.
	if h.deps.SeenAndRecord(r.Context(), req.JobID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	category, _ := model.ParseCategory(req.Category)
	level := h.defaultLevel
	if req.Level != "" {
		level = model.ParseLevel(req.Level)
	}
	job := model.Job{
		JobID:    req.JobID,
		Record:   req.Record,
		Category: category,
		Level:    level,
	}

	// Try to enqueue for async processing
	if ok := h.deps.Enqueue(r.Context(), job); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.JobID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
