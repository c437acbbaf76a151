package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"meditrace/internal/domain/model"
)

// CheckpointsHandler handles scan ingestion requests.
type CheckpointsHandler struct {
	deps Dependencies
}

// NewCheckpointsHandler creates a new checkpoints handler.
func NewCheckpointsHandler(deps Dependencies) *CheckpointsHandler {
	return &CheckpointsHandler{deps: deps}
}

// scanRequest mirrors the OpenAPI schema for POST /api/v1/checkpoints.
type scanRequest struct {
	ScanID    string  `json:"scan_id"`
	UnitID    string  `json:"unit_id"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	EventType string  `json:"event_type"`
	TS        string  `json:"ts"`
}

func (s scanRequest) validate() error {
	switch {
	case strings.TrimSpace(s.UnitID) == "":
		return errors.New("missing unit_id")
	case strings.TrimSpace(s.EventType) == "":
		return errors.New("missing event_type")
	case strings.TrimSpace(s.TS) == "":
		return errors.New("missing ts")
	}
	if _, err := time.Parse(time.RFC3339, s.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

func (s scanRequest) event() model.ScanEvent {
	ts, _ := time.Parse(time.RFC3339, s.TS)
	return model.ScanEvent{
		ScanID:    s.ScanID,
		UnitID:    s.UnitID,
		Location:  s.Location,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		EventType: s.EventType,
		Timestamp: ts,
	}
}

// HandlePostCheckpoint handles POST /api/v1/checkpoints requests.
func (h *CheckpointsHandler) HandlePostCheckpoint(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_checkpoint"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	event := req.event()
	key := event.IdempotencyKey()

	// Idempotency check, mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), key) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), event); !ok {
		// Roll back the seen status so the client can retry.
		h.deps.Unrecord(r.Context(), key)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
