package service

import "errors"

// Common errors returned by the services
var (
	// ErrJobInProgress is returned when a duplicate task delivery arrives
	// while another delivery holds the processing state. The task endpoint
	// maps it to a retryable failure so the queue redelivers later.
	ErrJobInProgress = errors.New("job is already being processed")

	// ErrDuplicateJob is returned when a caller-supplied job ID collides
	// with an existing job.
	ErrDuplicateJob = errors.New("a job with this ID already exists")
)
