package notifier

import (
	"context"
	"time"

	"lodgebook/pkg/kafka"
	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"
)

const (
	// Topic carrying user notifications, consumed by the notification service.
	Topic = "notifications"

	publishTimeout = 5 * time.Second
)

// Notifier delivers user notifications best effort. Implementations must never
// block the caller or propagate delivery failures.
type Notifier interface {
	Notify(userID string, eventType string)
}

type kafkaNotifier struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaNotifier(producer *kafka.Producer, source string, log *logger.Logger) Notifier {
	return &kafkaNotifier{
		producer: producer,
		source:   source,
		log:      log,
	}
}

// Notify publishes asynchronously with its own timeout so a slow broker never
// stalls the request that triggered the notification.
func (n *kafkaNotifier) Notify(userID string, eventType string) {
	msg := kafka.NewMessage().
		WithKey(userID).
		WithValue(model.Notification{UserID: userID, Type: eventType}).
		WithEventType(eventType).
		WithSource(n.source).
		Build()
	msg.Topic = Topic

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := n.producer.Publish(ctx, msg); err != nil {
			n.log.Warn("Failed to publish notification",
				"user_id", userID,
				"event_type", eventType,
				"error", err,
			)
		}
	}()
}
