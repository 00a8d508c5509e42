package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"replate/internal/domain"
)

// PointsRepositoryInterface owns the customer_points table. No other
// component writes balances; the order transition transaction goes through
// AwardTx so the award commits or rolls back with the status update.
type PointsRepositoryInterface interface {
	GetOrCreate(ctx context.Context, customerID int64) (domain.PointsBalance, error)
	Award(ctx context.Context, customerID, amount int64) (domain.PointsBalance, error)
	AwardTx(ctx context.Context, tx pgx.Tx, customerID, amount int64) error
}

type PointsRepository struct {
	db *pgxpool.Pool
}

func NewPointsRepository(db *pgxpool.Pool) *PointsRepository {
	return &PointsRepository{db: db}
}

const upsertAward = `
INSERT INTO customer_points (user_id, points, last_updated)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET
  points = customer_points.points + EXCLUDED.points,
  last_updated = now()
RETURNING user_id, points, last_updated
`

func (r *PointsRepository) GetOrCreate(ctx context.Context, customerID int64) (domain.PointsBalance, error) {
	var b domain.PointsBalance
	// zero-amount award doubles as create-if-missing and returns the row
	err := r.db.QueryRow(ctx, upsertAward, customerID, int64(0)).
		Scan(&b.CustomerID, &b.Points, &b.LastUpdated)
	if err != nil {
		return domain.PointsBalance{}, fmt.Errorf("get or create balance: %w", err)
	}
	return b, nil
}

func (r *PointsRepository) Award(ctx context.Context, customerID, amount int64) (domain.PointsBalance, error) {
	var b domain.PointsBalance
	err := r.db.QueryRow(ctx, upsertAward, customerID, amount).
		Scan(&b.CustomerID, &b.Points, &b.LastUpdated)
	if err != nil {
		return domain.PointsBalance{}, fmt.Errorf("award points: %w", err)
	}
	return b, nil
}

func (r *PointsRepository) AwardTx(ctx context.Context, tx pgx.Tx, customerID, amount int64) error {
	if _, err := tx.Exec(ctx, upsertAward, customerID, amount); err != nil {
		return fmt.Errorf("award points in tx: %w", err)
	}
	return nil
}
