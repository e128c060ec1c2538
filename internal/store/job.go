package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
)

// Artifact records a stored report file for a job.
type Artifact struct {
	JobID       uuid.UUID
	Kind        string
	StoragePath string
	SizeBytes   int64
	SHA256      string
	CreatedAt   time.Time
}

// TerminalFields carries the data recorded alongside a terminal transition.
type TerminalFields struct {
	ReportPath   string
	ErrorMessage string
}

// JobStore defines the interface for persisting grading jobs. The persisted
// record is the single source of truth for a job's lifecycle; all status
// changes go through guarded transitions so concurrent duplicate deliveries
// cannot both move a job.
// Version: 1.0
type JobStore interface {
	// CreateJob persists a new job in the queued state.
	// Returns ErrJobAlreadyExists when the job ID is already present.
	CreateJob(ctx context.Context, job *domain.GradingJob) error

	// GetJob retrieves a job by ID.
	// Returns ErrJobNotFound when no job exists with the given ID.
	GetJob(ctx context.Context, id uuid.UUID) (*domain.GradingJob, error)

	// MarkProcessing attempts the queued -> processing transition.
	// A job stuck in processing longer than staleAfter may be re-taken;
	// staleAfter <= 0 disables re-taking. Reports whether this caller won
	// the transition.
	MarkProcessing(ctx context.Context, id uuid.UUID, staleAfter time.Duration) (bool, error)

	// MarkTerminal attempts the processing -> completed/failed transition,
	// recording the report path or error detail. Reports whether this
	// caller won the transition. Returns domain.ErrInvalidJobStatus when
	// the target status is not terminal.
	MarkTerminal(ctx context.Context, id uuid.UUID, status domain.JobStatus, fields TerminalFields) (bool, error)

	// SaveResults persists the per-answer outcomes and the overall summary
	// for a job, replacing any outcomes a previous partial run left behind.
	SaveResults(ctx context.Context, id uuid.UUID, results []domain.GradeResult, overall domain.OverallResult) error

	// SaveArtifact records a stored report file for a job.
	SaveArtifact(ctx context.Context, artifact Artifact) error
}
