package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avschaefer/cloudhire-ai-api/internal/config"
)

// setRequiredEnv sets the minimum environment for a valid load.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CLOUDHIRE_AUTH_BEARER_TOKEN", "0123456789abcdef0123456789abcdef")
	t.Setenv("CLOUDHIRE_DATABASE_URL", "postgres://localhost:5432/cloudhire?sslmode=disable")
	t.Setenv("CLOUDHIRE_QUEUE_PROJECT", "cloudhire-ai")
	t.Setenv("CLOUDHIRE_QUEUE_LOCATION", "us-central1")
	t.Setenv("CLOUDHIRE_QUEUE_WORKER_URL", "https://worker.example.com/internal/tasks/grade")
	t.Setenv("CLOUDHIRE_QUEUE_SERVICE_ACCOUNT_EMAIL", "tasks@cloudhire-ai.iam.gserviceaccount.com")
	t.Setenv("CLOUDHIRE_LLM_GEMINI_API_KEY", "test-api-key")
	t.Setenv("CLOUDHIRE_STORAGE_ACCESS_KEY", "access")
	t.Setenv("CLOUDHIRE_STORAGE_SECRET_KEY", "secret")
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "cloudtasks", cfg.Queue.Provider)
	assert.Equal(t, "grading-jobs", cfg.Queue.Queue)
	assert.Equal(t, "gemini", cfg.LLM.GraderMode)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.ModelName)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, "reports", cfg.Storage.Bucket)
	assert.Equal(t, 5, cfg.Webhook.MaxRetries)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLOUDHIRE_SERVER_PORT", "9090")
	t.Setenv("CLOUDHIRE_LLM_GRADER_MODE", "dummy")
	t.Setenv("CLOUDHIRE_LLM_GEMINI_API_KEY", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "dummy", cfg.LLM.GraderMode)
}

func TestLoadRejectsMissingBearerToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLOUDHIRE_AUTH_BEARER_TOKEN", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsShortBearerToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLOUDHIRE_AUTH_BEARER_TOKEN", "short")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownQueueProvider(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLOUDHIRE_QUEUE_PROVIDER", "kafka")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRedisProviderNeedsAddr(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLOUDHIRE_QUEUE_PROVIDER", "redis")

	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("CLOUDHIRE_QUEUE_REDIS_ADDR", "localhost:6379")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Queue.Provider)
}

func TestLoadDummyModeNeedsNoAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLOUDHIRE_LLM_GRADER_MODE", "dummy")
	t.Setenv("CLOUDHIRE_LLM_GEMINI_API_KEY", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.GeminiAPIKey)
}
