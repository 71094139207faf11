package http

import (
	"encoding/json"
	"net/http"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/usecase"
)

// RuleSetHandler serves the tenant's active compliance parameters.
type RuleSetHandler struct {
	ruleSets *usecase.RuleSetUseCase
}

// NewRuleSetHandler creates a rule set handler.
func NewRuleSetHandler(ruleSets *usecase.RuleSetUseCase) *RuleSetHandler {
	return &RuleSetHandler{ruleSets: ruleSets}
}

// GetRuleSet returns the tenant's active rule set.
func (h *RuleSetHandler) GetRuleSet(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	cfg, err := h.ruleSets.Get(r.Context(), id.TenantID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// UpdateRuleSet applies a partial update to the tenant's rule set.
func (h *RuleSetHandler) UpdateRuleSet(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var patch domain.RuleSetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	cfg, err := h.ruleSets.Update(r.Context(), id.TenantID, patch, id.ActorUID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type seedRuleSetRequest struct {
	Pack string `json:"pack"`
}

// SeedRuleSet initializes the tenant's rule set from a built-in pack.
// Seeding an already-seeded tenant returns the existing config unchanged.
func (h *RuleSetHandler) SeedRuleSet(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req seedRuleSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Pack == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "pack is required")
		return
	}

	cfg, err := h.ruleSets.SeedDefault(r.Context(), id.TenantID, req.Pack, id.ActorUID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
