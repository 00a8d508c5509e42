package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"replate/internal/connections/rabbitmq"
	"replate/internal/domain"
)

// EventPublisher pushes order lifecycle events to the broker: order.created
// on the orders topic exchange, status changes on the notifications fanout.
type EventPublisher struct {
	mq *rabbitmq.Client
}

func NewEventPublisher(mq *rabbitmq.Client) *EventPublisher {
	return &EventPublisher{mq: mq}
}

func (p *EventPublisher) OrderCreated(ctx context.Context, ev domain.OrderCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order created event: %w", err)
	}
	key := fmt.Sprintf("orders.created.%d", ev.BusinessID)
	return p.publish(ctx, rabbitmq.OrdersExchange, key, ev.OrderID, body)
}

func (p *EventPublisher) StatusChanged(ctx context.Context, ev domain.StatusChangedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal status changed event: %w", err)
	}
	return p.publish(ctx, rabbitmq.NotificationsExchange, "", ev.OrderID, body)
}

func (p *EventPublisher) publish(ctx context.Context, exchange, key string, orderID int64, body []byte) error {
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.mq.Publish(pctx, exchange, key, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     uuid.NewString(),
		CorrelationId: fmt.Sprintf("%d", orderID),
		Timestamp:     time.Now().UTC(),
		Headers:       amqp.Table{"x-source": "replate-api"},
		Body:          body,
	})
}
