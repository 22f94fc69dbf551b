package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/albionthreads/checkout-service/pkg/errors"
	"github.com/albionthreads/checkout-service/pkg/logger"
	"github.com/albionthreads/checkout-service/pkg/validator"
)

// ErrorBody is the failure envelope returned by every endpoint: a single
// user-facing message plus optional machine-readable context. Successful
// responses are written as bare DTOs, not wrapped.
type ErrorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, headers are already sent so nothing can be done.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the failure envelope. AppError carries its
// own status, code, and sanitized message; sentinel errors map through
// apperrors.HTTPStatus; anything uncategorized becomes a 500 with a generic
// message. Internal errors are logged with the request-scoped logger when the
// RequestLogger middleware is mounted, falling back to the given logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			l.ErrorContext(r.Context(), "request failed",
				slog.String("code", appErr.Code),
				slog.String("error", err.Error()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
		}
		WriteJSON(w, appErr.Status, ErrorBody{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		message = "resource not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		message = err.Error()
	case errors.Is(err, apperrors.ErrOutOfStock):
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, ErrorBody{Error: message})
}

// WriteValidationError writes the failure envelope for a request that failed
// struct validation, including the per-field error map.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{
			Error:  "request validation failed",
			Code:   "INVALID_REQUEST",
			Fields: valErr.Fields(),
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorBody{
		Error: err.Error(),
		Code:  "INVALID_REQUEST",
	})
}
