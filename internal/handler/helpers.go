package handler

import (
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"schoolgle/internal/domain"
	"schoolgle/internal/httputil"
)

// errorWriter maps service errors onto the response envelope. Handlers embed it.
type errorWriter struct {
	logger *slog.Logger
	debug  bool // expose store error detail in responses
}

// handleError converts domain errors to HTTP responses
func (e *errorWriter) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fieldErrs   validation.Errors
		formatErr   *domain.InvalidFormatError
		conflictErr *domain.ConflictError
	)

	switch {
	case errors.As(err, &formatErr):
		httputil.RespondError(w, http.StatusBadRequest, httputil.CodeInvalidFormat, formatErr.Error(),
			map[string]any{"supported": formatErr.Supported})
	case errors.Is(err, domain.ErrValidation):
		var details any
		if errors.As(err, &fieldErrs) {
			details = fieldErrs
		}
		httputil.RespondError(w, http.StatusBadRequest, httputil.CodeValidation, err.Error(), details)
	case errors.Is(err, domain.ErrInvalidTransition):
		httputil.RespondError(w, http.StatusBadRequest, httputil.CodeInvalidTransition, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, httputil.CodeNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, httputil.CodeUnauthorized, err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, httputil.CodeForbidden, err.Error(), nil)
	case errors.Is(err, domain.ErrVersionConflict):
		httputil.RespondError(w, http.StatusConflict, httputil.CodeVersionConflict, err.Error(), nil)
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, httputil.CodeConflict, conflictErr.Error(),
			map[string]any{"resourceType": conflictErr.ResourceType, "resourceId": conflictErr.ResourceID})
	default:
		e.logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		var details any
		if e.debug {
			details = err.Error()
		}
		httputil.RespondError(w, http.StatusInternalServerError, httputil.CodeStoreError, "internal server error", details)
	}
}

// badRequest writes a VALIDATION_ERROR for malformed input caught before the service
func badRequest(w http.ResponseWriter, message string) {
	httputil.RespondError(w, http.StatusBadRequest, httputil.CodeValidation, message, nil)
}

// PathParam extracts a UUID path value, writing a 400 when it is missing or malformed.
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		badRequest(w, label+" is required")
		return "", false
	}
	if _, err := uuid.Parse(value); err != nil {
		badRequest(w, label+" must be a valid UUID")
		return "", false
	}
	return value, true
}

// bindActor reconciles the userId carried in a request body with the
// authenticated subject. An empty body value takes the subject; a
// different one is rejected. Without an authenticated subject the body
// value is used as-is.
func bindActor(w http.ResponseWriter, r *http.Request, userID *string) bool {
	subject := httputil.GetUserID(r)
	if subject == "" {
		return true
	}
	if *userID == "" {
		*userID = subject
		return true
	}
	if *userID != subject {
		httputil.RespondError(w, http.StatusForbidden, httputil.CodeForbidden, "userId does not match the authenticated user", nil)
		return false
	}
	return true
}

// queryActor returns the acting user for read requests: the authenticated
// subject, or the userId query parameter when authentication is disabled.
func queryActor(r *http.Request) string {
	if subject := httputil.GetUserID(r); subject != "" {
		return subject
	}
	return r.URL.Query().Get("userId")
}
