package queue

import (
	"context"

	"github.com/google/uuid"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
)

// GradeTaskPayload is the body delivered to the worker endpoint for one
// grading job. It carries everything the worker needs so a redelivery can
// be processed even if the submit-side record is unreachable.
type GradeTaskPayload struct {
	JobID       uuid.UUID                    `json:"job_id"`
	AttemptID   string                       `json:"attempt_id"`
	UserID      string                       `json:"user_id"`
	ExamID      string                       `json:"exam_id,omitempty"`
	AttemptNo   int                          `json:"attempt_no"`
	Purpose     string                       `json:"purpose"`
	Answers     []domain.AnswerSubmission    `json:"answers"`
	Rubric      map[string]any               `json:"rubric,omitempty"`
	SectionMap  map[string]map[string]string `json:"section_map,omitempty"`
	CallbackURL string                       `json:"callback_url,omitempty"`
	TriggeredBy string                       `json:"triggered_by,omitempty"`
}

// PayloadForJob builds the task payload from a persisted job.
func PayloadForJob(job *domain.GradingJob) GradeTaskPayload {
	return GradeTaskPayload{
		JobID:       job.ID,
		AttemptID:   job.AttemptID,
		UserID:      job.UserID,
		ExamID:      job.ExamID,
		AttemptNo:   job.AttemptNo,
		Purpose:     job.Purpose,
		Answers:     job.Answers,
		Rubric:      job.Rubric,
		SectionMap:  job.SectionMap,
		CallbackURL: job.CallbackURL,
		TriggeredBy: job.TriggeredBy,
	}
}

// Enqueuer defines the interface for handing a grading task to the external
// task queue. The queue guarantees at-least-once delivery to the worker
// endpoint; duplicate deliveries are absorbed by the worker's guarded
// status transitions.
// Version: 1.0
type Enqueuer interface {
	// EnqueueGradeTask enqueues one task targeting the worker endpoint.
	EnqueueGradeTask(ctx context.Context, payload GradeTaskPayload) error
}
