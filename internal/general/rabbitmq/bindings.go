package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchanges
const (
	ExchangeNotificationTopic = "notification_topic"
)

// Queues
const (
	QueueUserNotifications        = "user_notifications"
	QueueCoordinatorNotifications = "coordinator_notifications"
)

// Routing keys
const (
	RouteNotifyUserPrefix        = "notify.user."        // {recipient_id}
	RouteNotifyCoordinatorPrefix = "notify.coordinator." // {event}
)

func declareTopology(ch *amqp.Channel) error {
	// 1. Exchanges
	if err := ch.ExchangeDeclare(ExchangeNotificationTopic, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeNotificationTopic, err)
	}

	// 2. Queues
	queues := []string{
		QueueUserNotifications,
		QueueCoordinatorNotifications,
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	// 3. Bindings
	bindings := []struct {
		queue      string
		exchange   string
		routingKey string
	}{
		{QueueUserNotifications, ExchangeNotificationTopic, RouteNotifyUserPrefix + "*"},
		{QueueCoordinatorNotifications, ExchangeNotificationTopic, RouteNotifyCoordinatorPrefix + "*"},
	}

	for _, b := range bindings {
		if err := ch.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
