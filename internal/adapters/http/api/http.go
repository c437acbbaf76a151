// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "meditrace/internal/app"
	"meditrace/internal/domain/dedupe"
	"meditrace/internal/domain/model"
)

// Request and result shapes shared with the service layer.
type (
	BatchRequest = service.BatchRequest
	BatchResult  = service.BatchResult
	VerifyResult = service.VerifyResult
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a scan event for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, e model.ScanEvent) bool

	// IssueBatch mints tracked units under a fresh batch id.
	IssueBatch(ctx context.Context, req BatchRequest) (BatchResult, error)

	// Verify runs the anomaly-scoring pipeline for one unit id.
	Verify(ctx context.Context, unitID string) (VerifyResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	batchesHandler     *BatchesHandler
	checkpointsHandler *CheckpointsHandler
	verifyHandler      *VerifyHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		batchesHandler:     NewBatchesHandler(deps),
		checkpointsHandler: NewCheckpointsHandler(deps),
		verifyHandler:      NewVerifyHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/api/v1/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/batches", MetricsMiddleware(s.batchesHandler.HandlePostBatch, "batches"))
	mux.HandleFunc("/api/v1/checkpoints", MetricsMiddleware(s.checkpointsHandler.HandlePostCheckpoint, "checkpoints"))
	mux.HandleFunc("/api/v1/verify/", MetricsMiddleware(s.verifyHandler.HandleVerify, "verify"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
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
