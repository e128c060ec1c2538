package grading

import (
	"context"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
)

// Grader defines the interface for grading a single answer. This interface
// serves as a boundary between the application core and external AI/LLM
// services, following the hexagonal architecture pattern.
//
// Implementations are single-shot: retry policy for transient failures
// lives in the caller, which distinguishes retryable errors via
// errors.Is(err, ErrTransient).
type Grader interface {
	// GradeAnswer scores the provided answer against the rubric.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - answer: The submitted answer to grade
	//   - rubric: Free-form rubric forwarded from the submission
	//
	// Returns:
	//   - The grade result with score in [0, 1] and a short rationale
	//   - An error if grading fails (see errors.go for specific types)
	GradeAnswer(ctx context.Context, answer domain.AnswerSubmission, rubric map[string]any) (domain.GradeResult, error)
}
