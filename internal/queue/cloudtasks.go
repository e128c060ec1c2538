package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"

	"github.com/avschaefer/cloudhire-ai-api/internal/config"
)

// CloudTasksEnqueuer enqueues grading tasks on Google Cloud Tasks as HTTP
// push tasks targeting the worker endpoint, authenticated with an OIDC
// token minted for the configured service account.
type CloudTasksEnqueuer struct {
	client    *cloudtasks.Client
	logger    *slog.Logger
	queuePath string
	workerURL string
	audience  string
	saEmail   string
}

// NewCloudTasksEnqueuer creates a new CloudTasksEnqueuer.
func NewCloudTasksEnqueuer(ctx context.Context, logger *slog.Logger, cfg config.QueueConfig) (*CloudTasksEnqueuer, error) {
	client, err := cloudtasks.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud Tasks client: %w", err)
	}

	audience, err := audienceFromURL(cfg.WorkerURL)
	if err != nil {
		return nil, err
	}

	return &CloudTasksEnqueuer{
		client:    client,
		logger:    logger,
		queuePath: fmt.Sprintf("projects/%s/locations/%s/queues/%s", cfg.Project, cfg.Location, cfg.Queue),
		workerURL: cfg.WorkerURL,
		audience:  audience,
		saEmail:   cfg.ServiceAccountEmail,
	}, nil
}

// EnqueueGradeTask creates one HTTP task on the queue. The queue handles
// durability and redelivery; this call only has to succeed once.
func (e *CloudTasksEnqueuer) EnqueueGradeTask(ctx context.Context, payload GradeTaskPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	req := &cloudtaskspb.CreateTaskRequest{
		Parent: e.queuePath,
		Task: &cloudtaskspb.Task{
			MessageType: &cloudtaskspb.Task_HttpRequest{
				HttpRequest: &cloudtaskspb.HttpRequest{
					HttpMethod: cloudtaskspb.HttpMethod_POST,
					Url:        e.workerURL,
					Headers:    map[string]string{"Content-Type": "application/json"},
					Body:       body,
					AuthorizationHeader: &cloudtaskspb.HttpRequest_OidcToken{
						OidcToken: &cloudtaskspb.OidcToken{
							ServiceAccountEmail: e.saEmail,
							Audience:            e.audience,
						},
					},
				},
			},
		},
	}

	if _, err := e.client.CreateTask(ctx, req); err != nil {
		e.logger.ErrorContext(ctx, "failed to create Cloud Task",
			"job_id", payload.JobID,
			"queue", e.queuePath,
			"error", err)
		return fmt.Errorf("failed to create Cloud Task: %w", err)
	}

	e.logger.InfoContext(ctx, "grading task enqueued",
		"job_id", payload.JobID,
		"queue", e.queuePath)

	return nil
}

// Close releases the underlying gRPC connection.
func (e *CloudTasksEnqueuer) Close() error {
	return e.client.Close()
}

// audienceFromURL derives the OIDC audience (scheme + host) from the full
// worker URL.
func audienceFromURL(workerURL string) (string, error) {
	u, err := url.Parse(workerURL)
	if err != nil {
		return "", fmt.Errorf("invalid worker URL %q: %w", workerURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("worker URL %q must be absolute", workerURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
