package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/orderflow-backend/pkg/enums"
	"github.com/avolkov/orderflow-backend/pkg/mailer"
	"github.com/avolkov/orderflow-backend/pkg/outbox"
)

type captureSender struct {
	messages []mailer.Message
	err      error
}

func (s *captureSender) Send(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func envelopeBytes(t *testing.T, version int, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    version,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)
	return payload
}

func TestHandleRegistrationEvent(t *testing.T) {
	sender := &captureSender{}
	consumer, err := NewConsumer(ConsumerParams{Sender: sender})
	require.NoError(t, err)

	payload := envelopeBytes(t, 1, map[string]any{
		"user_id":     uuid.NewString(),
		"email":       "new.user@example.com",
		"confirm_key": "tok-abc123",
	})
	require.NoError(t, consumer.Handle(context.Background(), string(enums.EventUserRegistered), payload))

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, "new.user@example.com", msg.To)
	assert.Equal(t, "Confirm your registration", msg.Subject)
	assert.True(t, strings.Contains(msg.Body, "tok-abc123"))
}

func TestHandleOrderPlacedEvent(t *testing.T) {
	sender := &captureSender{}
	consumer, err := NewConsumer(ConsumerParams{Sender: sender})
	require.NoError(t, err)

	orderID := uuid.New()
	payload := envelopeBytes(t, 1, map[string]any{
		"order_id":   orderID.String(),
		"user_id":    uuid.NewString(),
		"email":      "buyer@example.com",
		"contact_id": uuid.NewString(),
		"item_count": 2,
		"total":      decimal.RequireFromString("219.80"),
	})
	require.NoError(t, consumer.Handle(context.Background(), string(enums.EventOrderPlaced), payload))

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, "buyer@example.com", msg.To)
	assert.True(t, strings.Contains(msg.Body, orderID.String()))
	assert.True(t, strings.Contains(msg.Body, "219.80"))
}

func TestHandleImportSummaryEvent(t *testing.T) {
	sender := &captureSender{}
	consumer, err := NewConsumer(ConsumerParams{Sender: sender})
	require.NoError(t, err)

	payload := envelopeBytes(t, 1, map[string]any{
		"shop_id":       uuid.NewString(),
		"shop_name":     "Svyaznoy",
		"owner_id":      uuid.NewString(),
		"owner_email":   "partner@example.com",
		"variant_count": 42,
	})
	require.NoError(t, consumer.Handle(context.Background(), string(enums.EventCatalogImported), payload))

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, "partner@example.com", msg.To)
	assert.True(t, strings.Contains(msg.Body, "42"))
}

func TestHandleSkipsUnknownEventTypes(t *testing.T) {
	sender := &captureSender{}
	consumer, err := NewConsumer(ConsumerParams{Sender: sender})
	require.NoError(t, err)

	payload := envelopeBytes(t, 1, map[string]any{"anything": true})
	require.NoError(t, consumer.Handle(context.Background(), "order.shredded", payload))
	assert.Empty(t, sender.messages)
}

func TestHandleSkipsUnknownVersions(t *testing.T) {
	sender := &captureSender{}
	consumer, err := NewConsumer(ConsumerParams{Sender: sender})
	require.NoError(t, err)

	payload := envelopeBytes(t, 2, map[string]any{"email": "x@example.com"})
	require.NoError(t, consumer.Handle(context.Background(), string(enums.EventUserRegistered), payload))
	assert.Empty(t, sender.messages)
}

func TestHandleRejectsMalformedEnvelopes(t *testing.T) {
	sender := &captureSender{}
	consumer, err := NewConsumer(ConsumerParams{Sender: sender})
	require.NoError(t, err)

	err = consumer.Handle(context.Background(), string(enums.EventUserRegistered), []byte("not json"))
	require.Error(t, err)
}

func TestHandlePropagatesSendFailures(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	consumer, err := NewConsumer(ConsumerParams{Sender: sender})
	require.NoError(t, err)

	payload := envelopeBytes(t, 1, map[string]any{
		"user_id":     uuid.NewString(),
		"email":       "new.user@example.com",
		"confirm_key": "tok",
	})
	err = consumer.Handle(context.Background(), string(enums.EventUserRegistered), payload)
	require.Error(t, err)
}
