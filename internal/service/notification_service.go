package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

// EventPublisher forwards encoded events to an external channel.
type EventPublisher interface {
	PublishEvent(ctx context.Context, payload []byte) error
}

// NotificationService logs domain events and, when a publisher is
// configured, forwards them as JSON.
// Events reach it through worker.NotificationWorker.
type NotificationService struct {
	publisher EventPublisher
	logger    *zap.Logger
}

// NewNotificationService creates the service. publisher may be nil.
func NewNotificationService(publisher EventPublisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{publisher: publisher, logger: logger}
}

// Handle logs one event and forwards it to the publisher.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("entity_id", event.EntityID),
		zap.Int64("actor_id", event.Actor.PersonID),
		zap.Any("payload", event.Payload))

	if n.publisher == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.publisher.PublishEvent(ctx, body); err != nil {
		n.logger.Warn("event publish failed", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	return nil
}
