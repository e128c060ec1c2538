package gemini

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avschaefer/cloudhire-ai-api/internal/config"
	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/grading"
)

func TestNewGeminiGraderValidatesConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logger := slog.Default()

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()
		_, err := NewGeminiGrader(ctx, nil, config.LLMConfig{GeminiAPIKey: "key", ModelName: "gemini-2.0-flash"})
		assert.Error(t, err)
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Parallel()
		_, err := NewGeminiGrader(ctx, logger, config.LLMConfig{ModelName: "gemini-2.0-flash"})
		assert.ErrorIs(t, err, grading.ErrInvalidConfig)
	})

	t.Run("missing model name", func(t *testing.T) {
		t.Parallel()
		_, err := NewGeminiGrader(ctx, logger, config.LLMConfig{GeminiAPIKey: "key"})
		assert.ErrorIs(t, err, grading.ErrInvalidConfig)
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	g := &GeminiGrader{logger: slog.Default()}
	var err error
	g.template, err = newPromptTemplate()
	require.NoError(t, err)

	answer := domain.AnswerSubmission{
		QuestionType: "free_response",
		QuestionID:   7,
		AnswerText:   "Energy is conserved.",
	}

	t.Run("includes rubric and identifier", func(t *testing.T) {
		t.Parallel()

		prompt, err := g.buildPrompt(answer, map[string]any{"criteria": "rigor"})
		require.NoError(t, err)
		assert.Contains(t, prompt, `"criteria":"rigor"`)
		assert.Contains(t, prompt, "free_response:7")
		assert.Contains(t, prompt, "Energy is conserved.")
	})

	t.Run("empty rubric renders as empty object", func(t *testing.T) {
		t.Parallel()

		prompt, err := g.buildPrompt(answer, nil)
		require.NoError(t, err)
		assert.Contains(t, prompt, "Rubric (JSON): {}")
	})
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, clampScore(-0.5))
	assert.Equal(t, 1.0, clampScore(1.5))
	assert.Equal(t, 0.73, clampScore(0.73))
}
