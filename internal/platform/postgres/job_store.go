package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/platform/logger"
	"github.com/avschaefer/cloudhire-ai-api/internal/store"
)

// uniqueViolationCode is the Postgres error code for unique constraint violations.
const uniqueViolationCode = "23505"

// PostgresJobStore implements the store.JobStore interface using PostgreSQL.
type PostgresJobStore struct {
	db store.DBTX
}

// NewPostgresJobStore creates a new PostgresJobStore.
func NewPostgresJobStore(db store.DBTX) *PostgresJobStore {
	return &PostgresJobStore{db: db}
}

// CreateJob persists a new job in the queued state.
func (s *PostgresJobStore) CreateJob(ctx context.Context, job *domain.GradingJob) error {
	log := logger.FromContext(ctx)

	answers, err := json.Marshal(job.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	rubric, err := marshalNullable(job.Rubric)
	if err != nil {
		return fmt.Errorf("failed to marshal rubric: %w", err)
	}

	sectionMap, err := marshalNullable(job.SectionMap)
	if err != nil {
		return fmt.Errorf("failed to marshal section map: %w", err)
	}

	query := `
		INSERT INTO grade_jobs (
			id, attempt_id, user_id, exam_id, attempt_no, purpose, status,
			answers, rubric, section_map, callback_url, triggered_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = s.db.ExecContext(ctx, query,
		job.ID,
		job.AttemptID,
		job.UserID,
		nullString(job.ExamID),
		job.AttemptNo,
		job.Purpose,
		job.Status,
		answers,
		rubric,
		sectionMap,
		nullString(job.CallbackURL),
		nullString(job.TriggeredBy),
		job.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return store.ErrJobAlreadyExists
		}
		log.Error("failed to create grading job",
			"job_id", job.ID,
			"error", err)
		return fmt.Errorf("failed to create grading job: %w", err)
	}

	return nil
}

// GetJob retrieves a job by ID.
func (s *PostgresJobStore) GetJob(ctx context.Context, id uuid.UUID) (*domain.GradingJob, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, attempt_id, user_id, exam_id, attempt_no, purpose, status,
		       answers, rubric, section_map, callback_url, triggered_by,
		       created_at, started_at, finished_at, report_path, error_message
		FROM grade_jobs
		WHERE id = $1
	`

	var (
		job                    domain.GradingJob
		examID, callbackURL    sql.NullString
		triggeredBy            sql.NullString
		reportPath, errMessage sql.NullString
		startedAt, finishedAt  sql.NullTime
		answers, rubric        []byte
		sectionMap             []byte
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.AttemptID,
		&job.UserID,
		&examID,
		&job.AttemptNo,
		&job.Purpose,
		&job.Status,
		&answers,
		&rubric,
		&sectionMap,
		&callbackURL,
		&triggeredBy,
		&job.CreatedAt,
		&startedAt,
		&finishedAt,
		&reportPath,
		&errMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get grading job", "job_id", id, "error", err)
		return nil, fmt.Errorf("failed to get grading job: %w", err)
	}

	if err := json.Unmarshal(answers, &job.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if len(rubric) > 0 {
		if err := json.Unmarshal(rubric, &job.Rubric); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rubric: %w", err)
		}
	}
	if len(sectionMap) > 0 {
		if err := json.Unmarshal(sectionMap, &job.SectionMap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal section map: %w", err)
		}
	}

	job.ExamID = examID.String
	job.CallbackURL = callbackURL.String
	job.TriggeredBy = triggeredBy.String
	job.ReportPath = reportPath.String
	job.ErrorMessage = errMessage.String
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		job.FinishedAt = &finishedAt.Time
	}

	return &job, nil
}

// MarkProcessing attempts the queued -> processing transition with a guarded
// update. The WHERE clause is the compare half of the compare-and-set: only
// a queued job, or a processing job whose started_at is older than
// staleAfter, matches.
func (s *PostgresJobStore) MarkProcessing(ctx context.Context, id uuid.UUID, staleAfter time.Duration) (bool, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()

	var (
		query string
		args  []any
	)
	if staleAfter > 0 {
		query = `
			UPDATE grade_jobs
			SET status = $2, started_at = $3
			WHERE id = $1
			  AND (status = 'queued' OR (status = 'processing' AND started_at < $4))
		`
		args = []any{id, domain.JobStatusProcessing, now, now.Add(-staleAfter)}
	} else {
		query = `
			UPDATE grade_jobs
			SET status = $2, started_at = $3
			WHERE id = $1 AND status = 'queued'
		`
		args = []any{id, domain.JobStatusProcessing, now}
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to mark job processing", "job_id", id, "error", err)
		return false, fmt.Errorf("failed to mark job processing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

// MarkTerminal attempts the processing -> completed/failed transition.
func (s *PostgresJobStore) MarkTerminal(ctx context.Context, id uuid.UUID, status domain.JobStatus, fields store.TerminalFields) (bool, error) {
	log := logger.FromContext(ctx)

	if !status.IsTerminal() {
		return false, domain.ErrInvalidJobStatus
	}

	query := `
		UPDATE grade_jobs
		SET status = $2, finished_at = $3, report_path = $4, error_message = $5
		WHERE id = $1 AND status = 'processing'
	`

	result, err := s.db.ExecContext(ctx, query,
		id,
		status,
		time.Now().UTC(),
		nullString(fields.ReportPath),
		nullString(fields.ErrorMessage),
	)
	if err != nil {
		log.Error("failed to mark job terminal",
			"job_id", id,
			"status", status,
			"error", err)
		return false, fmt.Errorf("failed to mark job terminal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

// SaveResults persists per-answer outcomes and the overall summary.
// Outcomes from an earlier partial run of the same job are replaced, so a
// re-taken stale job does not accumulate duplicate rows.
func (s *PostgresJobStore) SaveResults(ctx context.Context, id uuid.UUID, results []domain.GradeResult, overall domain.OverallResult) error {
	log := logger.FromContext(ctx)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM grade_results WHERE job_id = $1`, id); err != nil {
		log.Error("failed to clear previous results", "job_id", id, "error", err)
		return fmt.Errorf("failed to clear previous results: %w", err)
	}

	query := `
		INSERT INTO grade_results (
			job_id, question_type, question_id, section, score, rationale,
			tags, fallback, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now().UTC()
	for _, r := range results {
		tags, err := marshalNullable(r.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}

		_, err = s.db.ExecContext(ctx, query,
			id,
			r.QuestionType,
			r.QuestionID,
			nullString(r.Section),
			r.Score,
			r.Rationale,
			tags,
			r.Fallback,
			now,
		)
		if err != nil {
			log.Error("failed to save grade result",
				"job_id", id,
				"question_type", r.QuestionType,
				"question_id", r.QuestionID,
				"error", err)
			return fmt.Errorf("failed to save grade result: %w", err)
		}
	}

	overallQuery := `
		UPDATE grade_jobs
		SET overall_score = $2, overall_band = $3, overall_notes = $4
		WHERE id = $1
	`
	if _, err := s.db.ExecContext(ctx, overallQuery, id, overall.Score, overall.Band, nullString(overall.Notes)); err != nil {
		log.Error("failed to save overall result", "job_id", id, "error", err)
		return fmt.Errorf("failed to save overall result: %w", err)
	}

	return nil
}

// SaveArtifact records a stored report file for a job.
func (s *PostgresJobStore) SaveArtifact(ctx context.Context, artifact store.Artifact) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO artifacts (job_id, kind, storage_path, size_bytes, sha256, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	createdAt := artifact.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		artifact.JobID,
		artifact.Kind,
		artifact.StoragePath,
		artifact.SizeBytes,
		artifact.SHA256,
		createdAt,
	)
	if err != nil {
		log.Error("failed to save artifact",
			"job_id", artifact.JobID,
			"storage_path", artifact.StoragePath,
			"error", err)
		return fmt.Errorf("failed to save artifact: %w", err)
	}

	return nil
}

func marshalNullable(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			return nil, nil
		}
	case map[string]map[string]string:
		if len(t) == 0 {
			return nil, nil
		}
	case []string:
		if len(t) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
