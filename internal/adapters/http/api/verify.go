package api

import (
	"errors"
	"net/http"
	"strings"

	service "meditrace/internal/app"
)

// VerifyHandler handles verification requests.
type VerifyHandler struct {
	deps Dependencies
}

// NewVerifyHandler creates a new verify handler.
func NewVerifyHandler(deps Dependencies) *VerifyHandler {
	return &VerifyHandler{deps: deps}
}

// unknownUnitResponse is the counterfeit determination for ids that were
// never issued. Deliberately not a server error.
type unknownUnitResponse struct {
	UnitID    string `json:"unit_id"`
	Authentic bool   `json:"authentic"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}

// HandleVerify handles GET /api/v1/verify/{unit_id} requests. With
// ?detail=true the response includes the feature vector and verdict.
func (h *VerifyHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	unitID := strings.TrimPrefix(r.URL.Path, "/api/v1/verify/")
	if unitID == "" || strings.Contains(unitID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	result, err := h.deps.Verify(r.Context(), unitID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownUnit) {
			writeJSON(w, http.StatusNotFound, unknownUnitResponse{
				UnitID:    unitID,
				Authentic: false,
				Status:    "FAKE",
				Reason:    "identifier was never issued",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	if r.URL.Query().Get("detail") == "true" {
		writeJSON(w, http.StatusOK, result)
		return
	}
	writeJSON(w, http.StatusOK, result.Report)
}
