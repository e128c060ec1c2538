package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avschaefer/cloudhire-ai-api/internal/config"
	"github.com/avschaefer/cloudhire-ai-api/internal/platform/logger"
)

func TestSetupParsesLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		log := logger.Setup(config.ServerConfig{LogLevel: level})
		assert.NotNil(t, log, "level %q", level)
	}
}

func TestSetupFallsBackOnInvalidLevel(t *testing.T) {
	log := logger.Setup(config.ServerConfig{LogLevel: "verbose"})
	assert.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestFromContext(t *testing.T) {
	base := slog.Default()
	assert.Equal(t, base, logger.FromContext(context.Background()))

	scoped := base.With("trace_id", "abc")
	ctx := logger.WithLogger(context.Background(), scoped)
	assert.Equal(t, scoped, logger.FromContext(ctx))
}
