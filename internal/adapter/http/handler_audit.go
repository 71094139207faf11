package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/usecase"
)

// AuditHandler serves the read-only compliance trail.
type AuditHandler struct {
	audit *usecase.AuditUseCase
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(audit *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ListAuditLogs returns trail entries matching the query filters, oldest
// first.
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	filter, err := parseAuditFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	entries, total, err := h.audit.List(r.Context(), id.TenantID, filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.ComplianceAuditLog{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   total,
	})
}

// VerifyChain recomputes the tenant's full hash chain and reports the first
// broken entry, if any.
func (h *AuditHandler) VerifyChain(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	brokenSeq, err := h.audit.VerifyChain(r.Context(), id.TenantID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	body := map[string]interface{}{"intact": brokenSeq == 0}
	if brokenSeq != 0 {
		body["broken_seq"] = brokenSeq
	}
	writeJSON(w, http.StatusOK, body)
}

func parseAuditFilter(r *http.Request) (domain.AuditFilter, error) {
	q := r.URL.Query()
	var filter domain.AuditFilter

	if v := q.Get("action"); v != "" {
		action := domain.AuditAction(v)
		filter.Action = &action
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
