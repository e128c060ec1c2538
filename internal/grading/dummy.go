package grading

import (
	"context"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
)

// Dummy grading constants. The stub outcome is deterministic so tests and
// staging environments produce stable reports.
const (
	dummyScore     = 0.8
	dummyRationale = "Meets most criteria."
)

// DummyGrader returns a fixed outcome for every answer without making any
// external call. Selected by the "dummy" grader mode.
type DummyGrader struct{}

// NewDummyGrader creates a new DummyGrader.
func NewDummyGrader() *DummyGrader {
	return &DummyGrader{}
}

// GradeAnswer returns the deterministic stub outcome. It never fails.
func (g *DummyGrader) GradeAnswer(ctx context.Context, answer domain.AnswerSubmission, rubric map[string]any) (domain.GradeResult, error) {
	return domain.GradeResult{
		QuestionType: answer.QuestionType,
		QuestionID:   answer.QuestionID,
		Score:        dummyScore,
		Rationale:    dummyRationale,
	}, nil
}
