package queue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
)

func TestAudienceFromURL(t *testing.T) {
	t.Parallel()

	audience, err := audienceFromURL("https://grader.example.com/internal/tasks/grade")
	require.NoError(t, err)
	assert.Equal(t, "https://grader.example.com", audience)

	_, err = audienceFromURL("/internal/tasks/grade")
	assert.Error(t, err)

	_, err = audienceFromURL("://bad")
	assert.Error(t, err)
}

func TestPayloadForJob(t *testing.T) {
	t.Parallel()

	job, err := domain.NewGradingJob(uuid.Nil, "attempt-1", "user-1", []domain.AnswerSubmission{
		{QuestionType: "free_response", QuestionID: 1, AnswerText: "x"},
	})
	require.NoError(t, err)
	job.CallbackURL = "https://caller.example.com/hook"
	job.SectionMap = map[string]map[string]string{"free_response": {"1": "Technical"}}

	payload := PayloadForJob(job)
	assert.Equal(t, job.ID, payload.JobID)
	assert.Equal(t, job.AttemptID, payload.AttemptID)
	assert.Equal(t, job.Answers, payload.Answers)
	assert.Equal(t, job.CallbackURL, payload.CallbackURL)
	assert.Equal(t, job.SectionMap, payload.SectionMap)
}
