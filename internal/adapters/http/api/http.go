// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/coachcore/privacyd/internal/domain/dedupe"
	"github.com/coachcore/privacyd/internal/domain/model"
	"github.com/coachcore/privacyd/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Anonymize transforms a single record synchronously.
	Anonymize(ctx context.Context, record model.Record, category model.Category, level model.Level) (model.AnonymizedResult, error)

	// Enqueue pushes a job for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, j model.Job) bool

	// Read operations expose archived results.
	Result(ctx context.Context, id string) (model.AnonymizedResult, error)
	NextExpiring(ctx context.Context, n int) ([]types.Summary, error)
}

// Summary mirrors the read shape returned by archive listings.
type Summary = types.Summary

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	anonymizeHandler *AnonymizeHandler
	jobsHandler      *JobsHandler
	resultsHandler   *ResultsHandler
	expiringHandler  *ExpiringHandler
}

// NewServer creates a new API server with all handlers. Requests that
// omit the level field are anonymized at defaultLevel.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxExpiringLimit int, defaultLevel model.Level) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		anonymizeHandler: NewAnonymizeHandler(deps, defaultLevel),
		jobsHandler:      NewJobsHandler(deps, defaultLevel),
		resultsHandler:   NewResultsHandler(deps),
		expiringHandler:  NewExpiringHandler(deps, maxExpiringLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/anonymize", MetricsMiddleware(s.anonymizeHandler.HandlePostAnonymize, "anonymize"))
	mux.HandleFunc("/jobs", MetricsMiddleware(s.jobsHandler.HandlePostJob, "jobs"))
	mux.HandleFunc("/results/", MetricsMiddleware(s.resultsHandler.HandleGetResult, "results"))
	mux.HandleFunc("/expiring", MetricsMiddleware(s.expiringHandler.HandleGetExpiring, "expiring"))
}

// anonymizeRequest mirrors the OpenAPI schema for POST /anonymize.
type anonymizeRequest struct {
	Record   map[string]any `json:"record"`
	Category string         `json:"category"`
	Level    string         `json:"level"`
}

func (a anonymizeRequest) validate() error {
	if a.Record == nil {
		return errors.New("missing record")
	}
	if strings.TrimSpace(a.Category) == "" {
		return errors.New("missing category")
	}
	if _, ok := model.ParseCategory(a.Category); !ok {
		return errors.New("unknown category")
	}
	return nil
}

// jobRequest mirrors the OpenAPI schema for POST /jobs.
type jobRequest struct {
	JobID    string         `json:"job_id"`
	Record   map[string]any `json:"record"`
	Category string         `json:"category"`
	Level    string         `json:"level"`
}

func (j jobRequest) validate() error {
	if strings.TrimSpace(j.JobID) == "" {
		return errors.New("missing job_id")
	}
	return anonymizeRequest{Record: j.Record, Category: j.Category}.validate()
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
