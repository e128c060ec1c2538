package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/service"
	"github.com/avschaefer/cloudhire-ai-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Validation errors
	case errors.Is(err, domain.ErrEmptyAttemptID),
		errors.Is(err, domain.ErrEmptyUserID),
		errors.Is(err, domain.ErrNoAnswers):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrDuplicateJob),
		errors.Is(err, store.ErrJobAlreadyExists):
		return http.StatusConflict

	// Not found errors
	case errors.Is(err, store.ErrJobNotFound):
		return http.StatusNotFound

	// Contested deliveries are retryable, not failed
	case errors.Is(err, service.ErrJobInProgress):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrEmptyAttemptID):
		return "Attempt ID is required"
	case errors.Is(err, domain.ErrEmptyUserID):
		return "User ID is required"
	case errors.Is(err, domain.ErrNoAnswers):
		return "At least one answer is required"
	case errors.Is(err, service.ErrDuplicateJob),
		errors.Is(err, store.ErrJobAlreadyExists):
		return "A job with this ID already exists"
	case errors.Is(err, store.ErrJobNotFound):
		return "Job not found"
	case errors.Is(err, service.ErrJobInProgress):
		return "Job is being processed, retry later"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation
// errors and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'SubmitRequest.AttemptID' Error:Field
		// validation for 'AttemptID' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	case "uuid4":
		return "invalid UUID"
	default:
		return "validation failed"
	}
}
