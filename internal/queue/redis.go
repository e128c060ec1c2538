package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avschaefer/cloudhire-ai-api/internal/config"
)

// dispatchMaxAttempts bounds redeliveries of one task by the local
// dispatcher, mirroring a Cloud Tasks queue's retry limit.
const dispatchMaxAttempts = 5

// RedisEnqueuer pushes grading tasks onto a redis list. Used together with
// the Dispatcher as a local stand-in for Cloud Tasks during development.
type RedisEnqueuer struct {
	client *redis.Client
	queue  string
	logger *slog.Logger
}

// dispatchEnvelope wraps a task payload with its delivery attempt count.
type dispatchEnvelope struct {
	Attempt int              `json:"attempt"`
	Payload GradeTaskPayload `json:"payload"`
}

// NewRedisEnqueuer creates a RedisEnqueuer and verifies connectivity.
func NewRedisEnqueuer(ctx context.Context, logger *slog.Logger, cfg config.QueueConfig) (*RedisEnqueuer, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisEnqueuer{
		client: rdb,
		queue:  cfg.RedisQueue,
		logger: logger,
	}, nil
}

// EnqueueGradeTask pushes the payload onto the queue list.
func (e *RedisEnqueuer) EnqueueGradeTask(ctx context.Context, payload GradeTaskPayload) error {
	data, err := json.Marshal(dispatchEnvelope{Attempt: 1, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	if err := e.client.LPush(ctx, e.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	e.logger.InfoContext(ctx, "grading task enqueued",
		"job_id", payload.JobID,
		"queue", e.queue)

	return nil
}

// Close releases the redis connection.
func (e *RedisEnqueuer) Close() error {
	return e.client.Close()
}

// Dispatcher drains the redis queue and POSTs each task to the worker
// endpoint, re-queueing on non-2xx responses the way Cloud Tasks would
// redeliver. One dispatcher goroutine is enough for local development.
type Dispatcher struct {
	client    *redis.Client
	queue     string
	workerURL string
	httpc     *http.Client
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher reusing the enqueuer's connection.
func NewDispatcher(enqueuer *RedisEnqueuer, workerURL string) *Dispatcher {
	return &Dispatcher{
		client:    enqueuer.client,
		queue:     enqueuer.queue,
		workerURL: workerURL,
		httpc:     &http.Client{Timeout: 5 * time.Minute},
		logger:    enqueuer.logger,
	}
}

// Run blocks, delivering tasks until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("redis task dispatcher started",
		"queue", d.queue,
		"worker_url", d.workerURL)

	for {
		res, err := d.client.BRPop(ctx, 5*time.Second, d.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				d.logger.Info("redis task dispatcher stopping")
				return
			}
			d.logger.Error("failed to pop task from queue", "error", err)
			time.Sleep(time.Second)
			continue
		}

		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}
		d.deliver(ctx, []byte(res[1]))
	}
}

// deliver POSTs one task to the worker, re-queueing on failure until the
// attempt limit is reached.
func (d *Dispatcher) deliver(ctx context.Context, raw []byte) {
	var env dispatchEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		d.logger.Error("dropping undecodable task", "error", err)
		return
	}

	log := d.logger.With("job_id", env.Payload.JobID, "attempt", env.Attempt)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.workerURL, bytes.NewReader(mustMarshal(env.Payload)))
	if err != nil {
		log.Error("failed to build worker request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpc.Do(req)
	if err == nil {
		defer func() {
			if cerr := resp.Body.Close(); cerr != nil {
				log.Warn("failed to close worker response body", "error", cerr)
			}
		}()
		if resp.StatusCode < 300 {
			log.Info("task delivered")
			return
		}
		err = fmt.Errorf("worker returned status %d", resp.StatusCode)
	}

	log.Warn("task delivery failed", "error", err)

	if env.Attempt >= dispatchMaxAttempts {
		log.Error("task delivery attempts exhausted, dropping task")
		return
	}

	env.Attempt++
	data, err := json.Marshal(env)
	if err != nil {
		log.Error("failed to marshal redelivery envelope", "error", err)
		return
	}
	if err := d.client.LPush(ctx, d.queue, data).Err(); err != nil {
		log.Error("failed to requeue task", "error", err)
	}
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// GradeTaskPayload contains only marshalable types.
		panic(err)
	}
	return data
}
