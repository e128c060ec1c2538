package store

import "errors"

// Common errors returned by store implementations
var (
	// ErrJobNotFound is returned when a job lookup matches no record.
	ErrJobNotFound = errors.New("grading job not found")

	// ErrJobAlreadyExists is returned when creating a job whose ID is
	// already present.
	ErrJobAlreadyExists = errors.New("grading job already exists")
)
