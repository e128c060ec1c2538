package api

import (
	"github.com/google/uuid"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
)

// Common request/response structures

// AnswerPayload is one submitted answer in a submission request.
type AnswerPayload struct {
	QuestionType string `json:"question_type" validate:"required"`
	QuestionID   int    `json:"question_id"   validate:"required,min=1"`
	AnswerText   string `json:"answer_text"`
}

// SubmitRequest defines the payload for the job submission endpoint.
// JobID is optional; when absent the service generates one.
type SubmitRequest struct {
	JobID       string                       `json:"job_id,omitempty"       validate:"omitempty,uuid4"`
	AttemptID   string                       `json:"attempt_id"             validate:"required"`
	UserID      string                       `json:"user_id"                validate:"required"`
	ExamID      string                       `json:"exam_id,omitempty"`
	AttemptNo   int                          `json:"attempt_no,omitempty"   validate:"omitempty,min=1"`
	Purpose     string                       `json:"purpose,omitempty"      validate:"omitempty,oneof=practice final"`
	Answers     []AnswerPayload              `json:"answers"                validate:"required,min=1,dive"`
	Rubric      map[string]any               `json:"rubric,omitempty"`
	SectionMap  map[string]map[string]string `json:"section_map,omitempty"`
	CallbackURL string                       `json:"callback_url,omitempty" validate:"omitempty,url"`
	TriggeredBy string                       `json:"triggered_by,omitempty"`
}

// SubmitResponse defines the accepted response for the submission
// endpoint. Grading continues asynchronously; the job ID is the caller's
// handle for the outcome.
type SubmitResponse struct {
	JobID  uuid.UUID        `json:"job_id"`
	Status domain.JobStatus `json:"status"`
}

// domainAnswers converts the request answers into domain submissions.
func (r SubmitRequest) domainAnswers() []domain.AnswerSubmission {
	answers := make([]domain.AnswerSubmission, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, domain.AnswerSubmission{
			QuestionType: a.QuestionType,
			QuestionID:   a.QuestionID,
			AnswerText:   a.AnswerText,
		})
	}
	return answers
}
