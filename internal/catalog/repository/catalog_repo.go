package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"replate/internal/domain"
)

// CatalogRepositoryInterface is the read-only catalog lookup: menu items and
// businesses. Order placement reads prices through it; nothing writes.
type CatalogRepositoryInterface interface {
	GetMenuItem(ctx context.Context, id int64) (domain.MenuItem, error)
	GetBusiness(ctx context.Context, id int64) (domain.Business, error)
}

type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetMenuItem(ctx context.Context, id int64) (domain.MenuItem, error) {
	var m domain.MenuItem
	err := r.db.QueryRow(ctx, `
SELECT id, business_id, name, price, available
FROM menu_items WHERE id=$1
`, id).Scan(&m.ID, &m.BusinessID, &m.Name, &m.Price, &m.Available)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MenuItem{}, fmt.Errorf("menu item %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("get menu item: %w", err)
	}
	return m, nil
}

func (r *CatalogRepository) GetBusiness(ctx context.Context, id int64) (domain.Business, error) {
	var b domain.Business
	err := r.db.QueryRow(ctx, `
SELECT id, user_id, business_name
FROM businesses WHERE id=$1
`, id).Scan(&b.ID, &b.OwnerID, &b.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Business{}, fmt.Errorf("business %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Business{}, fmt.Errorf("get business: %w", err)
	}
	return b, nil
}
