package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fastapi1403/building-management/internal/models"
)

// For concurrency conflicts
var ErrRowVersionConflict = errors.New("row_version_conflict")

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// ValidationError is a client-fixable problem with one input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	EntityType models.EntityType
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.EntityType, e.ID)
}

// ConflictError is a failed hierarchy or state precondition.
type ConflictError struct {
	Reason           string
	BlockingChildren []models.EntityRef
	Err              error
}

func (e *ConflictError) Error() string { return "conflict: " + e.Reason }
func (e *ConflictError) Unwrap() error { return e.Err }

// TransientError wraps store I/O failures the caller may retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure during %s: %v", e.Op, e.Err)
}
func (e *TransientError) Unwrap() error { return e.Err }

type conflictDetails struct {
	BlockingChildren []models.EntityRef `json:"blocking_children"`
}

// HandleAppError centralizes responding to AppErrors and lifecycle errors.
func HandleAppError(w http.ResponseWriter, err error) {
	var (
		appErr       *AppError
		validErr     *ValidationError
		notFoundErr  *NotFoundError
		conflictErr  *ConflictError
		transientErr *TransientError
	)
	switch {
	case errors.As(err, &appErr):
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	case errors.As(err, &validErr):
		RespondError(w, http.StatusBadRequest, ErrorResponse{
			Code:    ErrCodeValidation,
			Message: "Validation error",
			Reason:  validErr.Reason,
			Field:   validErr.Field,
		}, err)
	case errors.As(err, &notFoundErr):
		RespondError(w, http.StatusNotFound, ErrorResponse{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("%s not found", notFoundErr.EntityType),
			Reason:  "not_found",
		}, err)
	case errors.As(err, &conflictErr):
		body := ErrorResponse{
			Code:    ErrCodeConflict,
			Message: "Conflict",
			Reason:  conflictErr.Reason,
		}
		if errors.Is(err, ErrRowVersionConflict) {
			body.Code = ErrCodeRowVersionConflict
		}
		if len(conflictErr.BlockingChildren) > 0 {
			body.Details = conflictDetails{BlockingChildren: conflictErr.BlockingChildren}
		}
		RespondError(w, http.StatusConflict, body, err)
	case errors.As(err, &transientErr):
		RespondError(w, http.StatusServiceUnavailable, ErrorResponse{
			Code:    ErrCodeTransient,
			Message: "Temporarily unavailable, retry later",
			Reason:  "transient",
		}, err)
	default:
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
