// Package webhook delivers signed completion notifications to the calling
// system. Delivery is best effort: exhausted retries are logged and never
// alter the job's recorded outcome.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/avschaefer/cloudhire-ai-api/internal/config"
	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
)

// NotifierConfig holds delivery tuning for the Notifier.
type NotifierConfig struct {
	// MaxRetries is the number of re-attempts after the first send fails.
	MaxRetries int

	// BaseDelay is the first backoff interval; subsequent attempts double
	// it with jitter.
	BaseDelay time.Duration

	// Timeout bounds each HTTP attempt.
	Timeout time.Duration

	// QueueSize is the buffer for pending events.
	QueueSize int
}

// NotifierConfigFromApp derives delivery tuning from app configuration.
func NotifierConfigFromApp(cfg config.WebhookConfig) NotifierConfig {
	return NotifierConfig{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		QueueSize:  64,
	}
}

// Notifier sends WebhookEvents asynchronously with bounded retries.
// Events are accepted on a buffered channel and delivered by a single
// worker goroutine, so notification latency never blocks job processing.
type Notifier struct {
	signer *Signer
	httpc  *http.Client
	logger *slog.Logger
	config NotifierConfig

	events chan domain.WebhookEvent
	wg     sync.WaitGroup
	once   sync.Once
}

// NewNotifier creates a Notifier. Call Start before enqueueing events.
func NewNotifier(signer *Signer, logger *slog.Logger, cfg NotifierConfig) *Notifier {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Notifier{
		signer: signer,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		config: cfg,
		events: make(chan domain.WebhookEvent, cfg.QueueSize),
	}
}

// Start launches the delivery worker.
func (n *Notifier) Start() {
	n.wg.Add(1)
	go n.worker()
}

// Stop closes the event channel and waits for in-flight deliveries.
func (n *Notifier) Stop() {
	n.once.Do(func() {
		close(n.events)
	})
	n.wg.Wait()
}

// Enqueue accepts an event for asynchronous delivery. Events without a
// callback URL are dropped silently; a full queue drops the event with an
// error log rather than blocking the caller.
func (n *Notifier) Enqueue(event domain.WebhookEvent) {
	if event.CallbackURL == "" {
		return
	}

	select {
	case n.events <- event:
	default:
		n.logger.Error("webhook queue full, dropping event",
			"job_id", event.JobID,
			"status", event.Status)
	}
}

// worker delivers events until the channel closes.
func (n *Notifier) worker() {
	defer n.wg.Done()

	for event := range n.events {
		n.deliver(event)
	}
}

// deliver attempts one event with bounded exponential backoff.
func (n *Notifier) deliver(event domain.WebhookEvent) {
	log := n.logger.With(
		"job_id", event.JobID,
		"status", event.Status,
	)

	body, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal webhook event", "error", err)
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; attempt <= n.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := n.config.BaseDelay << (attempt - 1)
			jitter := time.Duration(rng.Int63n(int64(delay)/2 + 1))
			time.Sleep(delay + jitter)
		}

		err = n.send(event.CallbackURL, body)
		if err == nil {
			log.Info("webhook delivered", "attempt", attempt+1)
			return
		}

		log.Warn("webhook delivery failed",
			"attempt", attempt+1,
			"max_attempts", n.config.MaxRetries+1,
			"error", err)
	}

	// The job's terminal state is authoritative and independently
	// queryable; notification exhaustion is logged only.
	log.Error("webhook delivery attempts exhausted", "error", err)
}

// send performs one signed POST.
func (n *Notifier) send(url string, body []byte) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.signer.Headers(body, time.Now()) {
		req.Header.Set(k, v)
	}

	resp, err := n.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			n.logger.Warn("failed to close webhook response body", "error", cerr)
		}
	}()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
