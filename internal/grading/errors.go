package grading

import "errors"

// Common errors returned by graders
var (
	// ErrTransient is returned for temporary failures that might resolve
	// on retry, such as API timeouts or rate limits.
	ErrTransient = errors.New("transient error during grading")

	// ErrInvalidResponse is returned when the model response cannot be
	// parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due
	// to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrInvalidConfig is returned when the grader configuration is invalid.
	ErrInvalidConfig = errors.New("invalid grader configuration")
)
