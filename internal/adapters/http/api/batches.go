package api

import (
	"errors"
	"net/http"

	service "meditrace/internal/app"
)

// BatchesHandler handles batch issuance requests.
type BatchesHandler struct {
	deps Dependencies
}

// NewBatchesHandler creates a new batches handler.
func NewBatchesHandler(deps Dependencies) *BatchesHandler {
	return &BatchesHandler{deps: deps}
}

// HandlePostBatch handles POST /api/v1/batches requests.
func (h *BatchesHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.IssueBatch(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBatch) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
