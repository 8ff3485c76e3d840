package main

import (
	"context"
	"errors"
	"io"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/db/models"
	"github.com/avolkov/orderflow-backend/pkg/enums"
	"github.com/avolkov/orderflow-backend/pkg/logger"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (r *fakeRepo) FetchUnpublished(limit int, maxAttempts int) ([]models.OutboxEvent, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	if limit < len(r.events) {
		return r.events[:limit], nil
	}
	return r.events, nil
}

func (r *fakeRepo) MarkPublished(id uuid.UUID) error {
	r.published = append(r.published, id)
	return nil
}

func (r *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	r.failed = append(r.failed, id)
	return nil
}

type fakePublishResult struct {
	err error
}

func (r fakePublishResult) Get(context.Context) (string, error) {
	return "msg-id", r.err
}

type fakePublisher struct {
	results  []publishResult
	messages []*gcppubsub.Message
}

func (p *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	if len(p.results) == 0 {
		return fakePublishResult{}
	}
	result := p.results[0]
	p.results = p.results[1:]
	return result
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Outbox.BatchSize = 10
	cfg.Outbox.MaxAttempts = 5
	cfg.Outbox.PollIntervalMS = 10
	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard}),
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return service
}

func testEvent(eventType enums.OutboxEventType) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateUser,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{"version":1,"data":{}}`),
	}
}

func TestProcessBatchPublishesWithEventAttributes(t *testing.T) {
	event := testEvent(enums.EventUserRegistered)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	service := newTestService(t, repo, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(pub.messages) != 1 {
		t.Fatalf("unexpected number of published messages: %d", len(pub.messages))
	}

	msg := pub.messages[0]
	if got := msg.Attributes["event_type"]; got != string(enums.EventUserRegistered) {
		t.Fatalf("unexpected event_type attribute: %q", got)
	}
	if got := msg.Attributes["event_id"]; got != event.ID.String() {
		t.Fatalf("unexpected event_id attribute: %q", got)
	}
	if string(msg.Data) != string(event.Payload) {
		t.Fatalf("payload was not forwarded verbatim")
	}
	if len(repo.published) != 1 || repo.published[0] != event.ID {
		t.Fatalf("event was not marked published")
	}
}

func TestProcessBatchContinuesAfterFailure(t *testing.T) {
	first := testEvent(enums.EventOrderPlaced)
	second := testEvent(enums.EventOrderPlaced)
	repo := &fakeRepo{events: []models.OutboxEvent{first, second}}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	service := newTestService(t, repo, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != first.ID {
		t.Fatalf("failed row recorded wrong ID")
	}
	if len(repo.published) != 1 || repo.published[0] != second.ID {
		t.Fatalf("published row recorded wrong ID")
	}
}

func TestProcessBatchReportsIdleWhenNothingPending(t *testing.T) {
	repo := &fakeRepo{}
	service := newTestService(t, repo, &fakePublisher{})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if processed {
		t.Fatalf("empty batch must report idle")
	}
}

func TestProcessBatchSurfacesFetchErrors(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("db down")}
	service := newTestService(t, repo, &fakePublisher{})

	if _, err := service.processBatch(context.Background()); err == nil {
		t.Fatalf("expected fetch error to surface")
	}
}
