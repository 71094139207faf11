package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shiftwise/shiftwise/internal/usecase"
)

// ReportHandler serves report generation, metadata and downloads.
type ReportHandler struct {
	reports *usecase.ReportUseCase
}

// NewReportHandler creates a report handler.
func NewReportHandler(reports *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GenerateReport builds an immutable report over the requested period and
// returns its metadata including the time-bounded download URL.
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req usecase.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	report, err := h.reports.Generate(r.Context(), id.TenantID, req, id.ActorUID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// GetReport returns report metadata by id. The artifact itself is only served
// through the download URL.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	reportID := mux.Vars(r)["id"]
	report, err := h.reports.Get(r.Context(), id.TenantID, reportID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// DownloadReport streams the report artifact. It authenticates via the signed
// token in the query string instead of the bearer identity.
func (h *ReportHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["id"]
	downloadToken := r.URL.Query().Get("token")
	if downloadToken == "" {
		writeError(w, http.StatusForbidden, "INVALID_TOKEN", "missing download token")
		return
	}

	report, err := h.reports.Download(r.Context(), reportID, downloadToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	contentType := "text/csv"
	if report.Format == "pdf" {
		contentType = "application/pdf"
	}
	filename := fmt.Sprintf("compliance-report-%s.%s", report.ID, report.Format)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(report.Payload)
}
