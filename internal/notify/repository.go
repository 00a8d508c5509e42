package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepositoryInterface interface {
	Insert(ctx context.Context, userID int64, message string, at time.Time) error
}

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Insert(ctx context.Context, userID int64, message string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO notification (user_id, message, read, timestamp)
VALUES ($1, $2, false, $3)
`, userID, message, at)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
