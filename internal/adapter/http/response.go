package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/service/token"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case domain.IsInvalidRange(err):
		writeError(w, http.StatusBadRequest, "INVALID_RANGE", err.Error())
	case domain.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
	case domain.IsConflict(err):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, token.ErrTokenExpired):
		writeError(w, http.StatusForbidden, "TOKEN_EXPIRED", "download link expired")
	case errors.Is(err, token.ErrInvalidToken):
		writeError(w, http.StatusForbidden, "INVALID_TOKEN", "invalid download token")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
	}
}
