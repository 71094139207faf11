package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/usecase"
)

// ViolationHandler serves the violation ledger.
type ViolationHandler struct {
	violations *usecase.ViolationUseCase
}

// NewViolationHandler creates a violation handler.
func NewViolationHandler(violations *usecase.ViolationUseCase) *ViolationHandler {
	return &ViolationHandler{violations: violations}
}

// ListViolations returns violations matching the query filters.
func (h *ViolationHandler) ListViolations(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	filter, err := parseViolationFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	violations, total, err := h.violations.List(r.Context(), id.TenantID, filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if violations == nil {
		violations = []*domain.ComplianceViolation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"violations": violations,
		"total":      total,
	})
}

// GetViolation returns one violation by id.
func (h *ViolationHandler) GetViolation(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	violationID := mux.Vars(r)["id"]
	violation, err := h.violations.Get(r.Context(), id.TenantID, violationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, violation)
}

// AcknowledgeViolation marks a violation as reviewed by the caller.
func (h *ViolationHandler) AcknowledgeViolation(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	violationID := mux.Vars(r)["id"]
	violation, err := h.violations.Acknowledge(r.Context(), id.TenantID, violationID, id.ActorUID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, violation)
}

func parseViolationFilter(r *http.Request) (domain.ViolationFilter, error) {
	q := r.URL.Query()
	var filter domain.ViolationFilter

	if v := q.Get("user_id"); v != "" {
		filter.UserID = &v
	}
	if v := q.Get("type"); v != "" {
		vt := domain.ViolationType(v)
		filter.Type = &vt
	}
	if v := q.Get("severity"); v != "" {
		sev := domain.Severity(v)
		filter.Severity = &sev
	}
	if v := q.Get("acknowledged"); v != "" {
		ack, err := strconv.ParseBool(v)
		if err != nil {
			return filter, &domain.ValidationError{Reason: "acknowledged must be true or false"}
		}
		filter.Acknowledged = &ack
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, &domain.ValidationError{Reason: "from must be RFC3339"}
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, &domain.ValidationError{Reason: "to must be RFC3339"}
		}
		filter.To = &t
	}
	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	return filter, nil
}
