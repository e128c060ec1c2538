package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/grading"
	"github.com/avschaefer/cloudhire-ai-api/internal/queue"
	"github.com/avschaefer/cloudhire-ai-api/internal/report"
	"github.com/avschaefer/cloudhire-ai-api/internal/storage"
	"github.com/avschaefer/cloudhire-ai-api/internal/store"
)

// Notifier is the completion-notification boundary the grading service
// emits terminal events to. Delivery is asynchronous and best effort.
type Notifier interface {
	Enqueue(event domain.WebhookEvent)
}

// GradingServiceConfig holds tuning for the grading worker.
type GradingServiceConfig struct {
	// MaxRetries is the number of re-attempts per answer after the first
	// grading call fails transiently.
	MaxRetries int

	// RetryBaseDelay is the first backoff interval; subsequent attempts
	// double it with jitter.
	RetryBaseDelay time.Duration

	// StaleAfter is how long a job may sit in processing before a
	// redelivery is allowed to take it over, covering workers that died
	// mid-job. Zero disables take-over.
	StaleAfter time.Duration
}

// DefaultGradingServiceConfig returns production defaults.
func DefaultGradingServiceConfig() GradingServiceConfig {
	return GradingServiceConfig{
		MaxRetries:     3,
		RetryBaseDelay: 2 * time.Second,
		StaleAfter:     30 * time.Minute,
	}
}

// GradingService processes one delivered grading task end to end: grade
// every answer, render and store the report, persist results, and emit the
// completion event. Processing is idempotent under the queue's
// at-least-once delivery: all status changes go through guarded
// transitions, so a duplicate delivery observes the job's real state and
// short-circuits.
type GradingService struct {
	store     store.JobStore
	grader    grading.Grader
	renderer  report.Renderer
	artifacts storage.ArtifactStore
	notifier  Notifier
	logger    *slog.Logger
	config    GradingServiceConfig
}

// NewGradingService creates a new GradingService.
func NewGradingService(
	jobStore store.JobStore,
	grader grading.Grader,
	renderer report.Renderer,
	artifacts storage.ArtifactStore,
	notifier Notifier,
	logger *slog.Logger,
	cfg GradingServiceConfig,
) *GradingService {
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 2 * time.Second
	}

	return &GradingService{
		store:     jobStore,
		grader:    grader,
		renderer:  renderer,
		artifacts: artifacts,
		notifier:  notifier,
		logger:    logger,
		config:    cfg,
	}
}

// Process handles one task delivery. A nil return tells the queue the
// delivery is settled (the job reached, or had already reached, a terminal
// state); an error return requests redelivery.
func (s *GradingService) Process(ctx context.Context, payload queue.GradeTaskPayload) error {
	log := s.logger.With("job_id", payload.JobID)

	job, err := s.loadOrCreateJob(ctx, payload)
	if err != nil {
		return err
	}

	if job.Status.IsTerminal() {
		log.Info("duplicate delivery for settled job, skipping",
			"status", job.Status)
		return nil
	}

	won, err := s.store.MarkProcessing(ctx, job.ID, s.config.StaleAfter)
	if err != nil {
		return fmt.Errorf("failed to claim job: %w", err)
	}
	if !won {
		current, err := s.store.GetJob(ctx, job.ID)
		if err != nil {
			return fmt.Errorf("failed to reload contested job: %w", err)
		}
		if current.Status.IsTerminal() {
			log.Info("job settled by concurrent delivery, skipping",
				"status", current.Status)
			return nil
		}
		return ErrJobInProgress
	}
	job.Status = domain.JobStatusProcessing

	log.Info("processing grading job", "answer_count", len(job.Answers))

	results, fallbacks := s.gradeAnswers(ctx, job)
	if fallbacks == len(results) {
		return s.failJob(ctx, job, errors.New("all grading calls failed"))
	}

	overall := domain.Summarize(results, "Auto-graded.")

	pdf, err := s.renderer.Render(job, results, overall)
	if err != nil {
		return s.failJob(ctx, job, fmt.Errorf("failed to render report: %w", err))
	}

	key := report.ArtifactKey(job.ID.String(), time.Now())
	if err := s.uploadWithRetry(ctx, key, pdf); err != nil {
		return s.failJob(ctx, job, fmt.Errorf("failed to store report: %w", err))
	}

	sum := sha256.Sum256(pdf)
	if err := s.store.SaveArtifact(ctx, store.Artifact{
		JobID:       job.ID,
		Kind:        "pdf",
		StoragePath: key,
		SizeBytes:   int64(len(pdf)),
		SHA256:      hex.EncodeToString(sum[:]),
	}); err != nil {
		return s.failJob(ctx, job, fmt.Errorf("failed to record artifact: %w", err))
	}

	if err := s.store.SaveResults(ctx, job.ID, results, overall); err != nil {
		return s.failJob(ctx, job, fmt.Errorf("failed to persist results: %w", err))
	}

	won, err = s.store.MarkTerminal(ctx, job.ID, domain.JobStatusCompleted, store.TerminalFields{ReportPath: key})
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	if !won {
		log.Info("job settled by concurrent delivery before completion")
		return nil
	}

	job.Status = domain.JobStatusCompleted
	job.ReportPath = key
	s.notifier.Enqueue(domain.NewWebhookEvent(job))

	log.Info("grading job completed",
		"report_path", key,
		"fallback_count", fallbacks)

	return nil
}

// loadOrCreateJob fetches the job record, creating it from the task
// payload when the submit-side write never became visible here.
func (s *GradingService) loadOrCreateJob(ctx context.Context, payload queue.GradeTaskPayload) (*domain.GradingJob, error) {
	job, err := s.store.GetJob(ctx, payload.JobID)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, store.ErrJobNotFound) {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	job, err = domain.NewGradingJob(payload.JobID, payload.AttemptID, payload.UserID, payload.Answers)
	if err != nil {
		return nil, err
	}
	job.ExamID = payload.ExamID
	job.AttemptNo = payload.AttemptNo
	if payload.Purpose != "" {
		job.Purpose = payload.Purpose
	}
	job.Rubric = payload.Rubric
	job.SectionMap = payload.SectionMap
	job.CallbackURL = payload.CallbackURL
	job.TriggeredBy = payload.TriggeredBy

	if err := s.store.CreateJob(ctx, job); err != nil {
		if errors.Is(err, store.ErrJobAlreadyExists) {
			return s.store.GetJob(ctx, payload.JobID)
		}
		return nil, fmt.Errorf("failed to create job from task payload: %w", err)
	}

	return job, nil
}

// gradeAnswers grades every answer, absorbing per-answer failures into
// fallback outcomes. Returns the results and how many are fallbacks.
func (s *GradingService) gradeAnswers(ctx context.Context, job *domain.GradingJob) ([]domain.GradeResult, int) {
	results := make([]domain.GradeResult, 0, len(job.Answers))
	fallbacks := 0

	for _, answer := range job.Answers {
		result, err := s.gradeWithRetry(ctx, answer, job.Rubric)
		if err != nil {
			s.logger.WarnContext(ctx, "answer grading failed, recording fallback outcome",
				"job_id", job.ID,
				"question_type", answer.QuestionType,
				"question_id", answer.QuestionID,
				"error", err)
			result = domain.FallbackResult(answer, err.Error())
			fallbacks++
		}

		result.JobID = job.ID
		result.Section = job.SectionFor(answer.QuestionType, answer.QuestionID)
		results = append(results, result)
	}

	return results, fallbacks
}

// gradeWithRetry calls the grader with bounded exponential backoff for
// transient errors. Permanent errors return immediately.
func (s *GradingService) gradeWithRetry(ctx context.Context, answer domain.AnswerSubmission, rubric map[string]any) (domain.GradeResult, error) {
	var lastErr error
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.config.RetryBaseDelay << (attempt - 1)
			jitter := time.Duration(rng.Int63n(int64(delay)/2 + 1))
			select {
			case <-time.After(delay + jitter):
			case <-ctx.Done():
				return domain.GradeResult{}, ctx.Err()
			}
		}

		result, err := s.grader.GradeAnswer(ctx, answer, rubric)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !errors.Is(err, grading.ErrTransient) {
			return domain.GradeResult{}, err
		}
	}

	return domain.GradeResult{}, lastErr
}

// uploadWithRetry stores the report with the same bounded backoff policy
// as grading calls.
func (s *GradingService) uploadWithRetry(ctx context.Context, key string, data []byte) error {
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.config.RetryBaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := s.artifacts.Upload(ctx, key, data, "application/pdf"); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return lastErr
}

// failJob records the failed terminal state and notifies. The error is
// absorbed (nil return) once the terminal state is durable, because
// further queue redeliveries cannot improve a settled job.
func (s *GradingService) failJob(ctx context.Context, job *domain.GradingJob, cause error) error {
	s.logger.ErrorContext(ctx, "grading job failed",
		"job_id", job.ID,
		"error", cause)

	won, err := s.store.MarkTerminal(ctx, job.ID, domain.JobStatusFailed, store.TerminalFields{
		ErrorMessage: cause.Error(),
	})
	if err != nil {
		// Terminal state not durable; surface the original cause so the
		// queue redelivers.
		return fmt.Errorf("failed to mark job failed (%v): %w", err, cause)
	}
	if !won {
		return nil
	}

	job.Status = domain.JobStatusFailed
	job.ErrorMessage = cause.Error()
	s.notifier.Enqueue(domain.NewWebhookEvent(job))

	return nil
}
