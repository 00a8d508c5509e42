package notifier

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"replate/internal/connections/rabbitmq"
	"replate/internal/notify"
)

// Run consumes status-change events and stores customer notifications.
func Run(ctx context.Context, db *pgxpool.Pool, mq *rabbitmq.Client, lg *zap.Logger) error {
	repo := notify.NewNotificationRepository(db)
	sub := notify.NewSubscriber(mq, repo, lg)
	return sub.Run(ctx)
}
