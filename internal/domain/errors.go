package domain

import "errors"

// Common validation errors for GradingJob
var (
	ErrEmptyJobID       = errors.New("job ID cannot be empty")
	ErrEmptyAttemptID   = errors.New("job attempt ID cannot be empty")
	ErrEmptyUserID      = errors.New("job user ID cannot be empty")
	ErrNoAnswers        = errors.New("job must contain at least one answer")
	ErrInvalidJobStatus = errors.New("invalid job status")
)
