package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/queue"
	"github.com/avschaefer/cloudhire-ai-api/internal/store"
)

// SubmitParams carries a validated submission into the job service.
type SubmitParams struct {
	// JobID is optional; a nil UUID means the service generates one.
	JobID       uuid.UUID
	AttemptID   string
	UserID      string
	ExamID      string
	AttemptNo   int
	Purpose     string
	Answers     []domain.AnswerSubmission
	Rubric      map[string]any
	SectionMap  map[string]map[string]string
	CallbackURL string
	TriggeredBy string
}

// JobService accepts grading requests: it persists the job in the queued
// state and hands a task to the external queue. Submission returns before
// grading begins; the caller observes the outcome via the persisted record
// or the completion webhook.
type JobService struct {
	store    store.JobStore
	enqueuer queue.Enqueuer
	logger   *slog.Logger
}

// NewJobService creates a new JobService.
func NewJobService(jobStore store.JobStore, enqueuer queue.Enqueuer, logger *slog.Logger) *JobService {
	return &JobService{
		store:    jobStore,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// Submit validates the request, persists the job as queued, and enqueues
// one grading task. Returns the created job; its ID is the caller's handle
// for the eventual outcome.
func (s *JobService) Submit(ctx context.Context, params SubmitParams) (*domain.GradingJob, error) {
	job, err := domain.NewGradingJob(params.JobID, params.AttemptID, params.UserID, params.Answers)
	if err != nil {
		return nil, err
	}

	job.ExamID = params.ExamID
	job.AttemptNo = params.AttemptNo
	if params.Purpose != "" {
		job.Purpose = params.Purpose
	}
	job.Rubric = params.Rubric
	job.SectionMap = params.SectionMap
	job.CallbackURL = params.CallbackURL
	job.TriggeredBy = params.TriggeredBy

	if err := s.store.CreateJob(ctx, job); err != nil {
		if errors.Is(err, store.ErrJobAlreadyExists) {
			return nil, ErrDuplicateJob
		}
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	if err := s.enqueuer.EnqueueGradeTask(ctx, queue.PayloadForJob(job)); err != nil {
		// The queued row stays behind; the caller sees the submit fail and
		// may retry with the same job ID only after the row is reaped.
		s.logger.ErrorContext(ctx, "failed to enqueue grading task",
			"job_id", job.ID,
			"error", err)
		return nil, fmt.Errorf("failed to enqueue grading task: %w", err)
	}

	s.logger.InfoContext(ctx, "grading job submitted",
		"job_id", job.ID,
		"attempt_id", job.AttemptID,
		"answer_count", len(job.Answers))

	return job, nil
}
