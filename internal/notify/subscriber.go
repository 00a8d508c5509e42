package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"replate/internal/connections/rabbitmq"
	"replate/internal/domain"
)

var (
	errRequeue = errors.New("requeue")     // nack(requeue=true)
	errDLQ     = errors.New("dead_letter") // nack(requeue=false)
)

// Subscriber consumes status-change events from the notifications fanout and
// persists a human-readable notification row for the order's customer.
type Subscriber struct {
	mq    *rabbitmq.Client
	repo  NotificationRepositoryInterface
	lg    *zap.Logger
	Queue string
}

func NewSubscriber(mq *rabbitmq.Client, repo NotificationRepositoryInterface, lg *zap.Logger) *Subscriber {
	return &Subscriber{mq: mq, repo: repo, lg: lg, Queue: rabbitmq.NotificationsQueue}
}

func (s *Subscriber) Run(ctx context.Context) error {
	msgs, err := s.mq.Consume(s.Queue, "notifier", 1)
	if err != nil {
		return fmt.Errorf("consume %s: %w", s.Queue, err)
	}
	s.lg.Info("subscriber_started", zap.String("queue", s.Queue))

	for {
		select {
		case <-ctx.Done():
			s.lg.Info("subscriber_stopped", zap.String("queue", s.Queue))
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			err := s.handle(ctx, d)
			switch {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, errDLQ):
				_ = d.Nack(false, false)
			default:
				_ = d.Nack(false, true)
			}
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, d amqp.Delivery) error {
	var ev domain.StatusChangedEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		// unparseable payload, retrying won't help
		return errDLQ
	}
	if ev.OrderID == 0 || ev.CustomerID == 0 || ev.NewStatus == "" {
		return errDLQ
	}

	msg := fmt.Sprintf("Your order #%d is now %s", ev.OrderID, ev.NewStatus)
	if err := s.repo.Insert(ctx, ev.CustomerID, msg, ev.Timestamp); err != nil {
		s.lg.Error("notification_insert_failed", zap.Int64("order_id", ev.OrderID), zap.Error(err))
		return errRequeue
	}
	s.lg.Info("notification_stored",
		zap.Int64("order_id", ev.OrderID),
		zap.Int64("customer_id", ev.CustomerID),
		zap.String("new_status", ev.NewStatus))
	return nil
}
