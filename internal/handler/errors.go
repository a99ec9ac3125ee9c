package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/location"
	"github.com/tertiusintegrity/fieldforce-api/internal/service"
)

// errorResponse is the JSON envelope every error shares.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto an HTTP status and the error envelope.
// Sentinels the handler doesn't recognize become opaque 500s; the underlying
// error is logged, never leaked to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{"validation_error", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{errorDetail{"not_found", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{errorDetail{"forbidden", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{errorDetail{"conflict", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{errorDetail{"invalid_transition", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrPlanLocked):
		writeJSON(w, http.StatusConflict, errorResponse{errorDetail{"plan_locked", unwrapMessage(err)}})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{errorDetail{"invalid_credentials", "invalid email or password"}})
	case errors.Is(err, location.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, errorResponse{errorDetail{"location_permission_denied", "location permission denied"}})
	case errors.Is(err, location.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{errorDetail{"location_unavailable", "could not determine current location"}})
	default:
		slog.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{errorDetail{"internal_error", "internal server error"}})
	}
}

// requestError rejects a request before it reaches the service layer
// (e.g. missing or malformed body, bad path parameter).
func requestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{"validation_error", message}})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.PlanService.Create: validation error: month must be 0-11" →
// "month must be 0-11". Errors are wrapped as "layer.Type.Method: sentinel:
// detail", so everything up to the last sentinel text is prefix.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []string{
		"validation error: ",
		"not found: ",
		"forbidden: ",
		"already exists: ",
		"invalid status transition: ",
		"plan is not editable: ",
	} {
		if i := strings.LastIndex(msg, sentinel); i >= 0 {
			return msg[i+len(sentinel):]
		}
	}
	return msg
}
