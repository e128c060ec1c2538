package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/avschaefer/cloudhire-ai-api/internal/api/middleware"
	"github.com/avschaefer/cloudhire-ai-api/internal/config"
	"github.com/avschaefer/cloudhire-ai-api/internal/grading"
	"github.com/avschaefer/cloudhire-ai-api/internal/platform/gemini"
	"github.com/avschaefer/cloudhire-ai-api/internal/platform/logger"
	"github.com/avschaefer/cloudhire-ai-api/internal/platform/s3"
	"github.com/avschaefer/cloudhire-ai-api/internal/queue"
	"github.com/avschaefer/cloudhire-ai-api/internal/report"
	"github.com/avschaefer/cloudhire-ai-api/internal/service"
	"github.com/avschaefer/cloudhire-ai-api/internal/webhook"
)

// application holds the initialized dependencies for the server.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	enqueuer queue.Enqueuer
	notifier *webhook.Notifier

	jobService     *service.JobService
	gradingService *service.GradingService
	oidc           *middleware.OIDCMiddleware

	// closers are shut down in reverse order on exit.
	closers []io.Closer

	// runDispatcher starts the local redis dispatcher alongside the HTTP
	// server; nil when Cloud Tasks delivers the work.
	runDispatcher func(ctx context.Context)
}

// newApplication loads configuration and wires every component together.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server)
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"queue_provider", cfg.Queue.Provider,
		"grader_mode", cfg.LLM.GraderMode)

	app := &application{
		config: cfg,
		logger: log,
	}

	db, err := openDatabase(ctx, log, cfg.Database)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, db)

	jobStore := newJobStore(db)

	grader, err := newGrader(ctx, log, cfg.LLM)
	if err != nil {
		app.Close()
		return nil, err
	}

	if err := app.setupQueue(ctx); err != nil {
		app.Close()
		return nil, err
	}

	artifacts, err := s3.NewS3ArtifactStore(cfg.Storage)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create artifact store: %w", err)
	}

	signer := webhook.NewSigner(cfg.Webhook.Secret, cfg.Webhook.KeyID)
	app.notifier = webhook.NewNotifier(signer, log, webhook.NotifierConfigFromApp(cfg.Webhook))
	app.notifier.Start()

	app.jobService = service.NewJobService(jobStore, app.enqueuer, log)

	gradingCfg := service.DefaultGradingServiceConfig()
	if cfg.LLM.MaxRetries > 0 {
		gradingCfg.MaxRetries = cfg.LLM.MaxRetries
	}
	if cfg.LLM.RetryDelaySeconds > 0 {
		gradingCfg.RetryBaseDelay = time.Duration(cfg.LLM.RetryDelaySeconds) * time.Second
	}
	app.gradingService = service.NewGradingService(
		jobStore,
		grader,
		report.NewPDFRenderer(),
		artifacts,
		app.notifier,
		log,
		gradingCfg,
	)

	app.oidc = middleware.NewOIDCMiddleware(cfg.Queue.OIDCAudience, nil)

	return app, nil
}

// setupQueue selects the task queue backend. Cloud Tasks is the deployed
// path; the redis provider bundles a dispatcher goroutine so the whole
// pipeline runs against local containers.
func (app *application) setupQueue(ctx context.Context) error {
	switch app.config.Queue.Provider {
	case "redis":
		enqueuer, err := queue.NewRedisEnqueuer(ctx, app.logger, app.config.Queue)
		if err != nil {
			return fmt.Errorf("failed to create redis enqueuer: %w", err)
		}
		app.enqueuer = enqueuer
		app.closers = append(app.closers, enqueuer)

		dispatcher := queue.NewDispatcher(enqueuer, app.config.Queue.WorkerURL)
		app.runDispatcher = dispatcher.Run
		return nil

	default:
		enqueuer, err := queue.NewCloudTasksEnqueuer(ctx, app.logger, app.config.Queue)
		if err != nil {
			return fmt.Errorf("failed to create Cloud Tasks enqueuer: %w", err)
		}
		app.enqueuer = enqueuer
		app.closers = append(app.closers, enqueuer)
		return nil
	}
}

// newGrader selects the grading backend from configuration.
func newGrader(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (grading.Grader, error) {
	if cfg.GraderMode == "dummy" {
		log.Warn("using dummy grader, no LLM calls will be made")
		return grading.NewDummyGrader(), nil
	}

	grader, err := gemini.NewGeminiGrader(ctx, log, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini grader: %w", err)
	}
	return grader, nil
}

// Close shuts down the application's components in reverse order of
// creation. Safe to call after a partial initialization.
func (app *application) Close() {
	if app.notifier != nil {
		app.notifier.Stop()
	}

	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error("failed to close component", "error", err)
		}
	}
}
