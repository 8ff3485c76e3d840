package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avolkov/orderflow-backend/pkg/enums"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/logger"
	"github.com/avolkov/orderflow-backend/pkg/mailer"
	"github.com/avolkov/orderflow-backend/pkg/outbox"
	"github.com/avolkov/orderflow-backend/pkg/outbox/payloads"
)

// Consumer turns published domain events into outgoing email. Unknown event
// types are acked and logged so one stray message never wedges the
// subscription; undecodable payloads of known types are returned as errors
// for redelivery.
type Consumer struct {
	registry *outbox.DecoderRegistry
	sender   mailer.Sender
	logg     *logger.Logger
}

// ConsumerParams bundles the consumer dependencies.
type ConsumerParams struct {
	Sender mailer.Sender
	Logger *logger.Logger
}

func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Sender == nil {
		return nil, fmt.Errorf("mail sender is required")
	}

	registry := outbox.NewDecoderRegistry()
	registry.Register(enums.EventUserRegistered, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.UserRegisteredEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	})
	registry.Register(enums.EventOrderPlaced, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.OrderPlacedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	})
	registry.Register(enums.EventCatalogImported, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.CatalogImportedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	})

	return &Consumer{
		registry: registry,
		sender:   params.Sender,
		logg:     params.Logger,
	}, nil
}

// Handle processes one published outbox payload. The data is the full
// envelope as written by the emitting transaction.
func (c *Consumer) Handle(ctx context.Context, eventType string, data []byte) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unmarshal event envelope")
	}

	decoded, err := c.registry.Decode(enums.OutboxEventType(eventType), envelope.Version, envelope.Data)
	if err != nil {
		if c.logg != nil {
			logCtx := c.logg.WithFields(ctx, map[string]any{
				"event_type": eventType,
				"event_id":   envelope.EventID,
			})
			c.logg.Warn(logCtx, "skipping event without a registered decoder")
		}
		return nil
	}

	msg, ok := c.render(decoded)
	if !ok {
		return nil
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send notification email")
	}
	if c.logg != nil {
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"event_type": eventType,
			"to":         msg.To,
		})
		c.logg.Info(logCtx, "notification delivered")
	}
	return nil
}

func (c *Consumer) render(decoded interface{}) (mailer.Message, bool) {
	switch event := decoded.(type) {
	case payloads.UserRegisteredEvent:
		return renderRegistrationConfirm(event), true
	case payloads.OrderPlacedEvent:
		return renderOrderPlaced(event), true
	case payloads.CatalogImportedEvent:
		return renderImportSummary(event), true
	}
	return mailer.Message{}, false
}

func renderRegistrationConfirm(event payloads.UserRegisteredEvent) mailer.Message {
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"An account was registered for %s.\n"+
			"Confirm it with this token:\n\n"+
			"    %s\n\n"+
			"If you did not register, ignore this message.\n",
		event.Email, event.ConfirmKey)
	return mailer.Message{
		To:      event.Email,
		Subject: "Confirm your registration",
		Body:    body,
	}
}

func renderOrderPlaced(event payloads.OrderPlacedEvent) mailer.Message {
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"Your order %s has been placed.\n"+
			"Items: %d\n"+
			"Total: %s\n\n"+
			"We will let you know when it ships.\n",
		event.OrderID, event.ItemCount, event.Total.StringFixed(2))
	return mailer.Message{
		To:      event.Email,
		Subject: fmt.Sprintf("Order %s placed", event.OrderID),
		Body:    body,
	}
}

func renderImportSummary(event payloads.CatalogImportedEvent) mailer.Message {
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"The price list for %s was imported.\n"+
			"Variants now listed: %d\n",
		event.ShopName, event.VariantCount)
	return mailer.Message{
		To:      event.OwnerEmail,
		Subject: fmt.Sprintf("Price list imported for %s", event.ShopName),
		Body:    body,
	}
}
