package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/infrastructure/contracts"
	"github.com/hilthontt/metaverse/internal/infrastructure/logging"
	"github.com/hilthontt/metaverse/internal/infrastructure/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// PresenceConsumer writes every presence event from the broker to the audit
// log.
type PresenceConsumer struct {
	rabbitmq *messaging.RabbitMQ
	repo     domain.PresenceAuditRepository
	logger   logging.Logger
}

func NewPresenceConsumer(rabbitmq *messaging.RabbitMQ, repo domain.PresenceAuditRepository, logger logging.Logger) *PresenceConsumer {
	return &PresenceConsumer{
		rabbitmq: rabbitmq,
		repo:     repo,
		logger:   logger,
	}
}

func (c *PresenceConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.PresenceQueue, func(ctx context.Context, msg amqp.Delivery) error {
		return c.Handle(ctx, msg.Body)
	})
}

func (c *PresenceConsumer) Handle(ctx context.Context, body []byte) error {
	var message contracts.AmqpMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("failed to unmarshal amqp message: %w", err)
	}

	var payload messaging.PresenceEventData
	if err := json.Unmarshal(message.Data, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal presence event: %w", err)
	}

	if err := c.repo.Log(ctx, domain.NewPresenceAuditLog(payload.Event)); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	c.logger.Debug(logging.RabbitMQ, logging.Consume, "presence event recorded", map[logging.ExtraKey]any{
		logging.UserID:      payload.Event.UserID.String(),
		logging.SpaceID:     payload.Event.SpaceID.String(),
		logging.MessageType: string(payload.Event.Type),
	})

	return nil
}
