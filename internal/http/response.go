package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"paymonth/internal/core"
	applog "paymonth/internal/log"
	"paymonth/internal/storage"
)

// Error codes of the failure envelope.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeRateLimited      = "RATE_LIMITED"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeAPIError(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	writeJSON(w, status, envelope{Error: &errorBody{Code: code, Message: message, FieldErrors: fields}})
}

// writeError maps domain errors to the failure envelope. Unknown errors are
// logged and reported as 500 without their message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs core.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeAPIError(w, http.StatusBadRequest, CodeValidation, "validation failed", verrs)
	case errors.Is(err, core.ErrInvalidArgument):
		writeAPIError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, storage.ErrNotFound):
		writeAPIError(w, http.StatusNotFound, CodeNotFound, "resource not found", nil)
	default:
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(), "Request failed", err,
			applog.ComponentHTTP, operationFor(r.Method),
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
		writeAPIError(w, http.StatusInternalServerError, CodeInternal, "internal server error", nil)
	}
}

func operationFor(method string) string {
	switch method {
	case http.MethodPost:
		return applog.OpCreate
	case http.MethodPatch, http.MethodPut:
		return applog.OpUpdate
	case http.MethodDelete:
		return applog.OpDelete
	default:
		return applog.OpRead
	}
}
