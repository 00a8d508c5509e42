package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"replate/internal/domain"
)

// PointsAwarder is the slice of the points ledger the delivery transition
// needs: an award that joins the caller's transaction.
type PointsAwarder interface {
	AwardTx(ctx context.Context, tx pgx.Tx, customerID, amount int64) error
}

type OrderRepositoryInterface interface {
	CreateOrder(ctx context.Context, o domain.Order, lines []domain.OrderLine) (domain.OrderView, error)
	GetOrder(ctx context.Context, id int64) (domain.OrderView, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.OrderView, error)
	ListByBusiness(ctx context.Context, businessID int64) ([]domain.OrderView, error)

	// AdvanceStatus applies the transition under a row lock. It reports the
	// previous status and whether the write happened; a request that finds
	// the order already at or past the target is a no-op, so a duplicate
	// delivered request never re-awards points.
	AdvanceStatus(ctx context.Context, id int64, target domain.OrderStatus, pointsAmount int64) (domain.OrderView, domain.OrderStatus, bool, error)
}

type OrderRepository struct {
	db     *pgxpool.Pool
	points PointsAwarder
}

func NewOrderRepository(db *pgxpool.Pool, points PointsAwarder) *OrderRepository {
	return &OrderRepository{db: db, points: points}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o domain.Order, lines []domain.OrderLine) (domain.OrderView, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.OrderView{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
INSERT INTO orders (user_id, business_id, status_id, total_price, created_at)
VALUES ($1, $2, $3, $4, now())
RETURNING id, created_at
`, o.CustomerID, o.BusinessID, o.Status.ID(), o.TotalPrice).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return domain.OrderView{}, fmt.Errorf("insert order: %w", err)
	}

	for i := range lines {
		lines[i].OrderID = o.ID
		err = tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, menu_item_id, quantity, price)
VALUES ($1, $2, $3, $4)
RETURNING id
`, o.ID, lines[i].MenuItemID, lines[i].Quantity, lines[i].Price).Scan(&lines[i].ID)
		if err != nil {
			return domain.OrderView{}, fmt.Errorf("insert order item %d: %w", lines[i].MenuItemID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.OrderView{}, fmt.Errorf("commit transaction: %w", err)
	}
	return domain.OrderView{Order: o, Lines: lines}, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id int64) (domain.OrderView, error) {
	var (
		o        domain.Order
		statusID int
	)
	err := r.db.QueryRow(ctx, `
SELECT id, user_id, business_id, status_id, total_price, created_at
FROM orders WHERE id=$1
`, id).Scan(&o.ID, &o.CustomerID, &o.BusinessID, &statusID, &o.TotalPrice, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderView{}, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.OrderView{}, fmt.Errorf("get order: %w", err)
	}
	if o.Status, err = domain.StatusFromID(statusID); err != nil {
		return domain.OrderView{}, err
	}

	lines, err := r.linesFor(ctx, []int64{o.ID})
	if err != nil {
		return domain.OrderView{}, err
	}
	return domain.OrderView{Order: o, Lines: lines[o.ID]}, nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.OrderView, error) {
	return r.list(ctx, `user_id`, customerID)
}

func (r *OrderRepository) ListByBusiness(ctx context.Context, businessID int64) ([]domain.OrderView, error) {
	return r.list(ctx, `business_id`, businessID)
}

func (r *OrderRepository) list(ctx context.Context, column string, id int64) ([]domain.OrderView, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
SELECT id, user_id, business_id, status_id, total_price, created_at
FROM orders WHERE %s=$1
ORDER BY created_at DESC, id DESC
`, column), id)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		views []domain.OrderView
		ids   []int64
	)
	for rows.Next() {
		var (
			o        domain.Order
			statusID int
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.BusinessID, &statusID, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.Status, err = domain.StatusFromID(statusID); err != nil {
			return nil, err
		}
		views = append(views, domain.OrderView{Order: o})
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return views, nil
	}

	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].Lines = lines[views[i].Order.ID]
	}
	return views, nil
}

func (r *OrderRepository) linesFor(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderLine, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, order_id, menu_item_id, quantity, price
FROM order_items WHERE order_id = ANY($1)
ORDER BY id
`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.OrderLine, len(orderIDs))
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Quantity, &l.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, rows.Err()
}

func (r *OrderRepository) AdvanceStatus(ctx context.Context, id int64, target domain.OrderStatus, pointsAmount int64) (domain.OrderView, domain.OrderStatus, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.OrderView{}, "", false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		o        domain.Order
		statusID int
	)
	err = tx.QueryRow(ctx, `
SELECT id, user_id, business_id, status_id, total_price, created_at
FROM orders WHERE id=$1
FOR UPDATE
`, id).Scan(&o.ID, &o.CustomerID, &o.BusinessID, &statusID, &o.TotalPrice, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderView{}, "", false, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.OrderView{}, "", false, fmt.Errorf("lock order: %w", err)
	}
	old, err := domain.StatusFromID(statusID)
	if err != nil {
		return domain.OrderView{}, "", false, err
	}

	// A concurrent request may have advanced the order between the service's
	// check and this lock; re-check here so the losing request becomes a
	// no-op instead of a second award.
	if target.Rank() <= old.Rank() {
		if err := tx.Commit(ctx); err != nil {
			return domain.OrderView{}, "", false, fmt.Errorf("commit transaction: %w", err)
		}
		o.Status = old
		view, err := r.viewFor(ctx, o)
		return view, old, false, err
	}

	if _, err := tx.Exec(ctx, `
UPDATE orders SET status_id=$2 WHERE id=$1
`, id, target.ID()); err != nil {
		return domain.OrderView{}, "", false, fmt.Errorf("update status: %w", err)
	}

	if target == domain.StatusDelivered {
		if err := r.points.AwardTx(ctx, tx, o.CustomerID, pointsAmount); err != nil {
			return domain.OrderView{}, "", false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.OrderView{}, "", false, fmt.Errorf("commit transaction: %w", err)
	}

	o.Status = target
	view, err := r.viewFor(ctx, o)
	return view, old, true, err
}

func (r *OrderRepository) viewFor(ctx context.Context, o domain.Order) (domain.OrderView, error) {
	lines, err := r.linesFor(ctx, []int64{o.ID})
	if err != nil {
		return domain.OrderView{}, err
	}
	return domain.OrderView{Order: o, Lines: lines[o.ID]}, nil
}
