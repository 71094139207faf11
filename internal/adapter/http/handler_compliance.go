package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/usecase"
)

// ComplianceHandler serves manual checks and the stats dashboard.
type ComplianceHandler struct {
	compliance *usecase.ComplianceUseCase
	stats      *usecase.StatsUseCase
}

// NewComplianceHandler creates a compliance handler.
func NewComplianceHandler(compliance *usecase.ComplianceUseCase, stats *usecase.StatsUseCase) *ComplianceHandler {
	return &ComplianceHandler{compliance: compliance, stats: stats}
}

type checkComplianceRequest struct {
	UserID    *string   `json:"user_id,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// CheckCompliance runs an explicit compliance check for a user (or all
// users) over a date range.
func (h *ComplianceHandler) CheckCompliance(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req checkComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	violations, err := h.compliance.CheckCompliance(r.Context(), id.TenantID, req.UserID, req.StartDate, req.EndDate, id.ActorUID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if violations == nil {
		violations = []domain.ComplianceViolation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"violations": violations,
		"total":      len(violations),
	})
}

// GetStats returns the rolling violation counters for the tenant.
func (h *ComplianceHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	stats, err := h.stats.GetStats(r.Context(), id.TenantID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
