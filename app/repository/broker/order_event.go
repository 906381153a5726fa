package broker

import (
	"context"
	"encoding/json"
	"log/slog"

	"sales-inventory/app/domain"
	"sales-inventory/pkg/rabbitmq"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderEventBroker publishes to RabbitMQ's default exchange. It is fail-open:
// when the broker cannot be reached within the manager's retry policy the
// message is dropped and a warning is logged.
type OrderEventBroker struct {
	manager *rabbitmq.Manager
	queue   string
}

func NewOrderEventPublisher(manager *rabbitmq.Manager) *OrderEventBroker {
	return &OrderEventBroker{
		manager: manager,
		queue:   manager.Queue().Name,
	}
}

func (b *OrderEventBroker) PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmed) {
	b.Publish(ctx, b.queue, event)
}

// Publish JSON-encodes event and sends it to queue. It never returns an error.
func (b *OrderEventBroker) Publish(ctx context.Context, queue string, event any) {
	if !b.manager.Connect(ctx) {
		slog.WarnContext(ctx, "[orderEventBroker] Publish", "connect", "broker unavailable, message dropped", "queue", queue)
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "[orderEventBroker] Publish", "json.Marshal", err)
		return
	}

	err = b.manager.Publish(ctx, queue, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		slog.WarnContext(ctx, "[orderEventBroker] Publish", "publish", err, "queue", queue)
		b.manager.Reset()
		return
	}

	slog.InfoContext(ctx, "[orderEventBroker] Publish", "queue", queue, "bytes", len(body))
}
