package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/mocks"
	"github.com/avschaefer/cloudhire-ai-api/internal/service"
)

func submitParams() service.SubmitParams {
	return service.SubmitParams{
		AttemptID: "attempt-1",
		UserID:    "user-1",
		AttemptNo: 1,
		Answers: []domain.AnswerSubmission{
			{QuestionType: "free_response", QuestionID: 1, AnswerText: "x"},
		},
		CallbackURL: "https://caller.example.com/hook",
	}
}

func TestSubmitCreatesQueuedJobAndEnqueuesTask(t *testing.T) {
	t.Parallel()

	jobStore := mocks.NewMemoryJobStore()
	enqueuer := &mocks.RecordingEnqueuer{}
	svc := service.NewJobService(jobStore, enqueuer, slog.Default())

	job, err := svc.Submit(context.Background(), submitParams())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.NotEqual(t, uuid.Nil, job.ID)

	persisted := jobStore.Job(job.ID)
	require.NotNil(t, persisted)
	assert.Equal(t, domain.JobStatusQueued, persisted.Status)

	payloads := enqueuer.Payloads()
	require.Len(t, payloads, 1)
	assert.Equal(t, job.ID, payloads[0].JobID)
	assert.Equal(t, job.Answers, payloads[0].Answers)
	assert.Equal(t, "https://caller.example.com/hook", payloads[0].CallbackURL)
}

func TestSubmitKeepsCallerSuppliedJobID(t *testing.T) {
	t.Parallel()

	jobStore := mocks.NewMemoryJobStore()
	svc := service.NewJobService(jobStore, &mocks.RecordingEnqueuer{}, slog.Default())

	params := submitParams()
	params.JobID = uuid.New()

	job, err := svc.Submit(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, params.JobID, job.ID)
}

func TestSubmitRejectsEmptyAnswers(t *testing.T) {
	t.Parallel()

	jobStore := mocks.NewMemoryJobStore()
	svc := service.NewJobService(jobStore, &mocks.RecordingEnqueuer{}, slog.Default())

	params := submitParams()
	params.Answers = nil

	_, err := svc.Submit(context.Background(), params)
	assert.ErrorIs(t, err, domain.ErrNoAnswers)
	assert.Zero(t, jobStore.JobCount())
}

func TestSubmitRejectsDuplicateJobID(t *testing.T) {
	t.Parallel()

	jobStore := mocks.NewMemoryJobStore()
	svc := service.NewJobService(jobStore, &mocks.RecordingEnqueuer{}, slog.Default())

	params := submitParams()
	params.JobID = uuid.New()

	_, err := svc.Submit(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), params)
	assert.ErrorIs(t, err, service.ErrDuplicateJob)
}

func TestSubmitPropagatesEnqueueFailure(t *testing.T) {
	t.Parallel()

	jobStore := mocks.NewMemoryJobStore()
	enqueuer := &mocks.RecordingEnqueuer{Err: assert.AnError}
	svc := service.NewJobService(jobStore, enqueuer, slog.Default())

	_, err := svc.Submit(context.Background(), submitParams())
	assert.Error(t, err)
}
