package webhook_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/webhook"
)

func fastNotifier(signer *webhook.Signer, maxRetries int) *webhook.Notifier {
	return webhook.NewNotifier(signer, slog.Default(), webhook.NotifierConfig{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		Timeout:    time.Second,
		QueueSize:  8,
	})
}

func testEvent(url string) domain.WebhookEvent {
	return domain.WebhookEvent{
		JobID:       uuid.New(),
		AttemptID:   "attempt-1",
		UserID:      "user-1",
		Status:      domain.JobStatusCompleted,
		ReportPath:  "2026/08/x.pdf",
		IssuedAt:    time.Now().UTC(),
		CallbackURL: url,
	}
}

func TestNotifierDeliversSignedEvent(t *testing.T) {
	signer := webhook.NewSigner("topsecret", "go-v1")

	var calls atomic.Int32
	var gotSignature atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.True(t, signer.Verify(body, r.Header.Get(webhook.HeaderSignature)))
		gotSignature.Store(r.Header.Get(webhook.HeaderKeyID))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := fastNotifier(signer, 2)
	n.Start()
	n.Enqueue(testEvent(srv.URL))
	n.Stop()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "go-v1", gotSignature.Load())
}

func TestNotifierRetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := fastNotifier(webhook.NewSigner("s3cret-s3cret-s3", "go-v1"), 4)
	n.Start()
	n.Enqueue(testEvent(srv.URL))
	n.Stop()

	assert.Equal(t, int32(3), calls.Load())
}

func TestNotifierGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := fastNotifier(webhook.NewSigner("s3cret-s3cret-s3", "go-v1"), 2)
	n.Start()
	n.Enqueue(testEvent(srv.URL))
	n.Stop()

	// Exhaustion is logged, never propagated: Stop returns normally.
	assert.Equal(t, int32(3), calls.Load())
}

func TestNotifierSkipsEventsWithoutCallback(t *testing.T) {
	n := fastNotifier(webhook.NewSigner("s3cret-s3cret-s3", "go-v1"), 0)
	n.Start()
	n.Enqueue(testEvent(""))
	n.Stop()
}
