package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the processing state of a grading job
type JobStatus string

// Possible job status values
const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// GradingJob represents one grading request covering multiple answers,
// tracked end-to-end by a single identifier. The persisted record is the
// single source of truth for the job's lifecycle.
type GradingJob struct {
	ID           uuid.UUID                    `json:"id"`
	AttemptID    string                       `json:"attempt_id"`
	UserID       string                       `json:"user_id"`
	ExamID       string                       `json:"exam_id,omitempty"`
	AttemptNo    int                          `json:"attempt_no"`
	Purpose      string                       `json:"purpose"`
	Status       JobStatus                    `json:"status"`
	Answers      []AnswerSubmission           `json:"answers"`
	Rubric       map[string]any               `json:"rubric,omitempty"`
	SectionMap   map[string]map[string]string `json:"section_map,omitempty"`
	CallbackURL  string                       `json:"callback_url,omitempty"`
	TriggeredBy  string                       `json:"triggered_by,omitempty"`
	CreatedAt    time.Time                    `json:"created_at"`
	StartedAt    *time.Time                   `json:"started_at,omitempty"`
	FinishedAt   *time.Time                   `json:"finished_at,omitempty"`
	ReportPath   string                       `json:"report_path,omitempty"`
	ErrorMessage string                       `json:"error_message,omitempty"`
}

// AnswerSubmission is one submitted answer within a grading job.
type AnswerSubmission struct {
	QuestionType string `json:"question_type"`
	QuestionID   int    `json:"question_id"`
	AnswerText   string `json:"answer_text"`
}

// NewGradingJob creates a new GradingJob in the queued state. A zero id
// means the caller did not supply one and a fresh UUID is generated.
// Returns an error if validation fails.
func NewGradingJob(id uuid.UUID, attemptID, userID string, answers []AnswerSubmission) (*GradingJob, error) {
	if id == uuid.Nil {
		id = uuid.New()
	}

	job := &GradingJob{
		ID:        id,
		AttemptID: attemptID,
		UserID:    userID,
		Purpose:   "final",
		Status:    JobStatusQueued,
		Answers:   answers,
		CreatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the GradingJob has valid data.
// Returns an error if any field fails validation.
func (j *GradingJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.AttemptID == "" {
		return ErrEmptyAttemptID
	}

	if j.UserID == "" {
		return ErrEmptyUserID
	}

	if len(j.Answers) == 0 {
		return ErrNoAnswers
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	return nil
}

// IsTerminal reports whether the status admits no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo reports whether moving from s to next is a legal status
// transition. Statuses move monotonically:
//
//	queued -> processing -> {completed, failed}
//
// Terminal statuses admit no transitions, so a job never regresses.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusQueued:
		return next == JobStatusProcessing
	case JobStatusProcessing:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// SectionFor resolves the section label for a question from the job's
// section map. Returns the empty string when no label is configured.
func (j *GradingJob) SectionFor(questionType string, questionID int) string {
	if j.SectionMap == nil {
		return ""
	}
	m, ok := j.SectionMap[questionType]
	if !ok {
		return ""
	}
	return m[strconv.Itoa(questionID)]
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}
