package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent is the completion notification sent to the calling system
// once a job reaches a terminal status. Events are constructed once per job
// and never mutated after being handed to the notifier.
type WebhookEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	AttemptID    string    `json:"attempt_id"`
	UserID       string    `json:"user_id"`
	Status       JobStatus `json:"status"`
	ReportPath   string    `json:"report_path,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`

	// CallbackURL is delivery routing, not part of the signed payload body.
	CallbackURL string `json:"-"`
}

// NewWebhookEvent builds the terminal-state event for a job.
func NewWebhookEvent(job *GradingJob) WebhookEvent {
	return WebhookEvent{
		JobID:        job.ID,
		AttemptID:    job.AttemptID,
		UserID:       job.UserID,
		Status:       job.Status,
		ReportPath:   job.ReportPath,
		ErrorMessage: job.ErrorMessage,
		IssuedAt:     time.Now().UTC(),
		CallbackURL:  job.CallbackURL,
	}
}
