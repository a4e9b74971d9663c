// README: Publishes order status change events to a fanout exchange; the
// notification service consumes them to tell customers where their food is.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"catering/internal/modules/status"
)

const exchange = "order_status_fanout"

type statusEvent struct {
	EventID    string `json:"event_id"`
	OrderID    int64  `json:"order_id"`
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"`
}

type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher declares the fanout exchange and returns a publisher bound to it.
func NewPublisher(ch *amqp.Channel) (*Publisher, error) {
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, orderID int64, st status.OrderStatus) error {
	body, err := json.Marshal(statusEvent{
		EventID:    uuid.NewString(),
		OrderID:    orderID,
		Status:     string(st),
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
