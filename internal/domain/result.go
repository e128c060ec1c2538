package domain

import "github.com/google/uuid"

// Overall band thresholds
const (
	// PassThreshold is the minimum mean score for an overall Pass band.
	PassThreshold = 0.7

	BandPass = "Pass"
	BandFail = "Fail"
)

// GradeResult is the outcome of grading a single answer. Fallback marks
// results recorded after the grading call failed; those carry a zero score
// and a note instead of failing the whole job.
type GradeResult struct {
	JobID        uuid.UUID `json:"job_id"`
	QuestionType string    `json:"question_type"`
	QuestionID   int       `json:"question_id"`
	Section      string    `json:"section,omitempty"`
	Score        float64   `json:"score"`
	Rationale    string    `json:"rationale"`
	Tags         []string  `json:"tags,omitempty"`
	Fallback     bool      `json:"fallback,omitempty"`
}

// OverallResult summarizes a job's per-answer outcomes.
type OverallResult struct {
	Score float64 `json:"score"`
	Band  string  `json:"band"`
	Notes string  `json:"notes,omitempty"`
}

// FallbackResult builds the recorded outcome for an answer whose grading
// call failed after retries were exhausted.
func FallbackResult(answer AnswerSubmission, reason string) GradeResult {
	return GradeResult{
		QuestionType: answer.QuestionType,
		QuestionID:   answer.QuestionID,
		Score:        0,
		Rationale:    "Grading unavailable: " + reason,
		Fallback:     true,
	}
}

// Summarize computes the overall result from per-answer outcomes.
// The mean score over all results (fallbacks included) decides the band.
func Summarize(results []GradeResult, notes string) OverallResult {
	if len(results) == 0 {
		return OverallResult{Score: 0, Band: BandFail, Notes: notes}
	}

	var total float64
	for _, r := range results {
		total += r.Score
	}
	score := total / float64(len(results))

	band := BandFail
	if score >= PassThreshold {
		band = BandPass
	}

	return OverallResult{Score: score, Band: band, Notes: notes}
}
