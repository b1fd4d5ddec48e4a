package rabbitmq

import (
	"context"
	"encoding/json"

	"fleetdesk/internal/general/logger"
	"fleetdesk/internal/ports"
)

// Notifier publishes notifications to the notification topic exchange.
// Delivery is fire-and-observe: broker problems are logged and dropped so
// the calling business transaction never fails on notification delivery.
type Notifier struct {
	publisher *Publisher
	logger    *logger.Logger
}

// NewNotifier constructs a Notifier on top of a Publisher.
func NewNotifier(publisher *Publisher, logger *logger.Logger) ports.NotificationService {
	return &Notifier{publisher: publisher, logger: logger}
}

// Notify serializes the body and publishes it under a routing key derived
// from the audience.
func (n *Notifier) Notify(ctx context.Context, body ports.NotificationBody) {
	payload, err := json.Marshal(body)
	if err != nil {
		n.logger.Error(ctx, "notification_encode_failed", "Failed to encode notification", err, map[string]any{
			"recipient_id": body.RecipientID,
			"audience":     body.Audience,
		})
		return
	}

	routingKey := RouteNotifyUserPrefix + body.RecipientID
	if body.Audience == "coordinator" {
		routingKey = RouteNotifyCoordinatorPrefix + body.EntityKind
	}

	if err := n.publisher.Publish(ctx, ExchangeNotificationTopic, routingKey, payload); err != nil {
		n.logger.Error(ctx, "notification_publish_failed", "Failed to publish notification", err, map[string]any{
			"routing_key": routingKey,
			"audience":    body.Audience,
		})
		return
	}

	n.logger.Debug(ctx, "notification_published", "Notification published", map[string]any{
		"routing_key": routingKey,
		"title":       body.Title,
	})
}
