package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avschaefer/cloudhire-ai-api/internal/api"
	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/mocks"
	"github.com/avschaefer/cloudhire-ai-api/internal/queue"
	"github.com/avschaefer/cloudhire-ai-api/internal/report"
	"github.com/avschaefer/cloudhire-ai-api/internal/service"
)

type taskFixture struct {
	store    *mocks.MemoryJobStore
	notifier *mocks.RecordingNotifier
	handler  http.Handler
}

func newTaskFixture() *taskFixture {
	f := &taskFixture{
		store:    mocks.NewMemoryJobStore(),
		notifier: &mocks.RecordingNotifier{},
	}
	gradingService := service.NewGradingService(
		f.store,
		mocks.NewScriptedGrader(nil),
		report.NewPDFRenderer(),
		mocks.NewRecordingArtifactStore(),
		f.notifier,
		slog.Default(),
		service.GradingServiceConfig{
			MaxRetries:     1,
			RetryBaseDelay: time.Millisecond,
			StaleAfter:     30 * time.Minute,
		},
	)
	handler := api.NewGradeTaskHandler(gradingService, slog.Default())
	f.handler = http.HandlerFunc(handler.HandleGradeTask)
	return f
}

func taskPayload() queue.GradeTaskPayload {
	return queue.GradeTaskPayload{
		JobID:     uuid.New(),
		AttemptID: "attempt-1",
		UserID:    "user-1",
		Purpose:   "final",
		Answers: []domain.AnswerSubmission{
			{QuestionType: "free_response", QuestionID: 1, AnswerText: "x"},
		},
	}
}

func (f *taskFixture) deliver(t *testing.T, payload queue.GradeTaskPayload) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/internal/tasks/grade", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleGradeTaskCompletesJob(t *testing.T) {
	t.Parallel()

	f := newTaskFixture()
	payload := taskPayload()

	rec := f.deliver(t, payload)

	assert.Equal(t, http.StatusOK, rec.Code)
	job := f.store.Job(payload.JobID)
	require.NotNil(t, job)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
}

func TestHandleGradeTaskDuplicateDeliveryAcknowledged(t *testing.T) {
	t.Parallel()

	f := newTaskFixture()
	payload := taskPayload()

	assert.Equal(t, http.StatusOK, f.deliver(t, payload).Code)
	assert.Equal(t, http.StatusOK, f.deliver(t, payload).Code)

	assert.Len(t, f.notifier.Events(), 1)
}

func TestHandleGradeTaskRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	f := newTaskFixture()

	req := httptest.NewRequest(http.MethodPost, "/internal/tasks/grade",
		bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleGradeTaskRejectsIncompletePayload(t *testing.T) {
	t.Parallel()

	f := newTaskFixture()
	payload := taskPayload()
	payload.Answers = nil

	assert.Equal(t, http.StatusUnprocessableEntity, f.deliver(t, payload).Code)
}

func TestHandleGradeTaskContestedJobIsRetryable(t *testing.T) {
	t.Parallel()

	f := newTaskFixture()
	payload := taskPayload()

	job, err := domain.NewGradingJob(payload.JobID, payload.AttemptID, payload.UserID, payload.Answers)
	require.NoError(t, err)
	require.NoError(t, f.store.CreateJob(context.Background(), job))

	won, err := f.store.MarkProcessing(context.Background(), payload.JobID, 0)
	require.NoError(t, err)
	require.True(t, won)

	assert.Equal(t, http.StatusServiceUnavailable, f.deliver(t, payload).Code)
}

func TestHandleGradeTaskStoreFailureIsRetryable(t *testing.T) {
	t.Parallel()

	f := newTaskFixture()
	f.store.GetJobErr = assert.AnError

	assert.Equal(t, http.StatusInternalServerError, f.deliver(t, taskPayload()).Code)
}
