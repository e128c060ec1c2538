package mocks

import (
	"context"
	"strconv"
	"sync"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
)

// GradeFunc scripts one grading call. The call index counts invocations for
// the same question, so tests can fail an answer N times and then succeed.
type GradeFunc func(answer domain.AnswerSubmission, call int) (domain.GradeResult, error)

// ScriptedGrader is a grading.Grader for tests. Without a script it grades
// every answer with a fixed score.
type ScriptedGrader struct {
	mu     sync.Mutex
	calls  map[string]int
	total  int
	Script GradeFunc
}

// NewScriptedGrader creates a ScriptedGrader.
func NewScriptedGrader(script GradeFunc) *ScriptedGrader {
	return &ScriptedGrader{
		calls:  make(map[string]int),
		Script: script,
	}
}

func (g *ScriptedGrader) GradeAnswer(ctx context.Context, answer domain.AnswerSubmission, rubric map[string]any) (domain.GradeResult, error) {
	g.mu.Lock()
	key := answer.QuestionType + ":" + strconv.Itoa(answer.QuestionID)
	g.calls[key]++
	call := g.calls[key]
	g.total++
	script := g.Script
	g.mu.Unlock()

	if script != nil {
		return script(answer, call)
	}

	return domain.GradeResult{
		QuestionType: answer.QuestionType,
		QuestionID:   answer.QuestionID,
		Score:        0.9,
		Rationale:    "ok",
	}, nil
}

// TotalCalls reports how many grading calls were made across all answers.
func (g *ScriptedGrader) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.total
}

// CallsFor reports how many grading calls were made for one question.
func (g *ScriptedGrader) CallsFor(answer domain.AnswerSubmission) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[answer.QuestionType+":"+strconv.Itoa(answer.QuestionID)]
}
