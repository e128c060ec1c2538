package mocks

import (
	"context"
	"sync"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/queue"
)

// RecordingEnqueuer is a queue.Enqueuer that records enqueued payloads.
type RecordingEnqueuer struct {
	mu       sync.Mutex
	payloads []queue.GradeTaskPayload
	Err      error
}

func (e *RecordingEnqueuer) EnqueueGradeTask(ctx context.Context, payload queue.GradeTaskPayload) error {
	if e.Err != nil {
		return e.Err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.payloads = append(e.payloads, payload)
	return nil
}

// Payloads returns all enqueued payloads.
func (e *RecordingEnqueuer) Payloads() []queue.GradeTaskPayload {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]queue.GradeTaskPayload(nil), e.payloads...)
}

// RecordingArtifactStore is a storage.ArtifactStore that keeps uploads in
// memory. FailUploads makes every Upload attempt fail.
type RecordingArtifactStore struct {
	mu          sync.Mutex
	uploads     map[string][]byte
	FailUploads error
}

func NewRecordingArtifactStore() *RecordingArtifactStore {
	return &RecordingArtifactStore{uploads: make(map[string][]byte)}
}

func (s *RecordingArtifactStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if s.FailUploads != nil {
		return s.FailUploads
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[key] = append([]byte(nil), data...)
	return nil
}

// UploadCount reports how many objects were stored.
func (s *RecordingArtifactStore) UploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

// RecordingNotifier captures webhook events instead of sending them.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []domain.WebhookEvent
}

func (n *RecordingNotifier) Enqueue(event domain.WebhookEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// Events returns all captured events.
func (n *RecordingNotifier) Events() []domain.WebhookEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.WebhookEvent(nil), n.events...)
}
