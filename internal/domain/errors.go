package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidFormat     = errors.New("invalid export format")
	ErrVersionConflict   = errors.New("version conflict")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (pack, membership)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidTransitionError is returned when a pack's current status does not
// allow the requested lifecycle action.
type InvalidTransitionError struct {
	Action string // submit, approve, edit
	From   string // current pack status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a pack in %s status", e.Action, e.From)
}

func (e *InvalidTransitionError) StatusCode() int {
	return http.StatusBadRequest
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// InvalidFormatError is returned for export formats outside the supported set.
type InvalidFormatError struct {
	Format    string
	Supported []string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q (supported: %v)", e.Format, e.Supported)
}

func (e *InvalidFormatError) StatusCode() int {
	return http.StatusBadRequest
}

func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// VersionConflictError is returned when two writers claim the same
// version number for a pack.
type VersionConflictError struct {
	PackID  string
	Version int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version %d of pack %s was written concurrently", e.Version, e.PackID)
}

func (e *VersionConflictError) StatusCode() int {
	return http.StatusConflict
}

func (e *VersionConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}
