package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/store"
)

// MemoryJobStore is an in-memory store.JobStore for tests. It applies the
// same guarded-transition semantics as the Postgres implementation.
type MemoryJobStore struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]*domain.GradingJob
	results   map[uuid.UUID][]domain.GradeResult
	overall   map[uuid.UUID]domain.OverallResult
	artifacts []store.Artifact

	// Error hooks let tests inject failures per call site.
	CreateJobErr     error
	GetJobErr        error
	MarkTerminalErr  error
	SaveResultsErr   error
	SaveArtifactErr  error
	MarkProcessErr   error
	TransitionCalls  int
	SaveResultsCalls int
}

// NewMemoryJobStore creates an empty MemoryJobStore.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs:    make(map[uuid.UUID]*domain.GradingJob),
		results: make(map[uuid.UUID][]domain.GradeResult),
		overall: make(map[uuid.UUID]domain.OverallResult),
	}
}

func (m *MemoryJobStore) CreateJob(ctx context.Context, job *domain.GradingJob) error {
	if m.CreateJobErr != nil {
		return m.CreateJobErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[job.ID]; ok {
		return store.ErrJobAlreadyExists
	}

	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *MemoryJobStore) GetJob(ctx context.Context, id uuid.UUID) (*domain.GradingJob, error) {
	if m.GetJobErr != nil {
		return nil, m.GetJobErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}

	clone := *job
	return &clone, nil
}

func (m *MemoryJobStore) MarkProcessing(ctx context.Context, id uuid.UUID, staleAfter time.Duration) (bool, error) {
	if m.MarkProcessErr != nil {
		return false, m.MarkProcessErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.TransitionCalls++

	job, ok := m.jobs[id]
	if !ok {
		return false, nil
	}

	now := time.Now().UTC()
	stale := staleAfter > 0 && job.Status == domain.JobStatusProcessing &&
		job.StartedAt != nil && job.StartedAt.Before(now.Add(-staleAfter))

	if job.Status != domain.JobStatusQueued && !stale {
		return false, nil
	}

	job.Status = domain.JobStatusProcessing
	job.StartedAt = &now
	return true, nil
}

func (m *MemoryJobStore) MarkTerminal(ctx context.Context, id uuid.UUID, status domain.JobStatus, fields store.TerminalFields) (bool, error) {
	if m.MarkTerminalErr != nil {
		return false, m.MarkTerminalErr
	}

	if !status.IsTerminal() {
		return false, domain.ErrInvalidJobStatus
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.TransitionCalls++

	job, ok := m.jobs[id]
	if !ok || job.Status != domain.JobStatusProcessing {
		return false, nil
	}

	now := time.Now().UTC()
	job.Status = status
	job.FinishedAt = &now
	job.ReportPath = fields.ReportPath
	job.ErrorMessage = fields.ErrorMessage
	return true, nil
}

func (m *MemoryJobStore) SaveResults(ctx context.Context, id uuid.UUID, results []domain.GradeResult, overall domain.OverallResult) error {
	if m.SaveResultsErr != nil {
		return m.SaveResultsErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveResultsCalls++

	m.results[id] = append([]domain.GradeResult(nil), results...)
	m.overall[id] = overall
	return nil
}

func (m *MemoryJobStore) SaveArtifact(ctx context.Context, artifact store.Artifact) error {
	if m.SaveArtifactErr != nil {
		return m.SaveArtifactErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.artifacts = append(m.artifacts, artifact)
	return nil
}

// Job returns the stored job, or nil when absent.
func (m *MemoryJobStore) Job(id uuid.UUID) *domain.GradingJob {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil
	}
	clone := *job
	return &clone
}

// Results returns the stored per-answer outcomes for a job.
func (m *MemoryJobStore) Results(id uuid.UUID) []domain.GradeResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GradeResult(nil), m.results[id]...)
}

// Overall returns the stored overall summary for a job.
func (m *MemoryJobStore) Overall(id uuid.UUID) domain.OverallResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overall[id]
}

// Artifacts returns all recorded artifacts.
func (m *MemoryJobStore) Artifacts() []store.Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.Artifact(nil), m.artifacts...)
}

// JobCount reports how many jobs have been created.
func (m *MemoryJobStore) JobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
