package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"replate/internal/auth"
	catalogrepo "replate/internal/catalog/repository"
	"replate/internal/domain"
	"replate/internal/order/repository"
)

// Publisher is the slice of the event bus the order flow needs. Publishing
// happens after commit and is best-effort: a broker hiccup must not fail an
// order that is already persisted.
type Publisher interface {
	OrderCreated(ctx context.Context, ev domain.OrderCreatedEvent) error
	StatusChanged(ctx context.Context, ev domain.StatusChangedEvent) error
}

type OrderServiceInterface interface {
	PlaceOrder(ctx context.Context, actor auth.Actor, req domain.PlaceOrderRequest) (domain.OrderView, error)
	GetOrder(ctx context.Context, actor auth.Actor, orderID int64) (domain.OrderView, error)
	ListCustomerOrders(ctx context.Context, actor auth.Actor) ([]domain.OrderView, error)
	ListBusinessOrders(ctx context.Context, actor auth.Actor, businessID int64) ([]domain.OrderView, error)
	AdvanceStatus(ctx context.Context, actor auth.Actor, orderID int64, statusID int) (domain.OrderView, error)
}

type OrderService struct {
	orders  repository.OrderRepositoryInterface
	catalog catalogrepo.CatalogRepositoryInterface
	events  Publisher
	lg      *zap.Logger
}

func NewOrderService(orders repository.OrderRepositoryInterface, catalog catalogrepo.CatalogRepositoryInterface, events Publisher, lg *zap.Logger) *OrderService {
	return &OrderService{orders: orders, catalog: catalog, events: events, lg: lg}
}

// PlaceOrder validates the cart against the business's live menu, snapshots
// prices, and persists the order with its lines as one transaction. All
// validation happens before any write.
func (s *OrderService) PlaceOrder(ctx context.Context, actor auth.Actor, req domain.PlaceOrderRequest) (domain.OrderView, error) {
	if err := auth.Require(actor, auth.RoleCustomer, "only customers can place orders"); err != nil {
		return domain.OrderView{}, err
	}
	if len(req.Items) == 0 {
		return domain.OrderView{}, fmt.Errorf("order must include items: %w", domain.ErrInvalidInput)
	}

	if _, err := s.catalog.GetBusiness(ctx, req.BusinessID); err != nil {
		return domain.OrderView{}, err
	}

	var (
		total float64
		lines = make([]domain.OrderLine, 0, len(req.Items))
	)
	for _, in := range req.Items {
		if in.Quantity <= 0 {
			return domain.OrderView{}, fmt.Errorf("invalid quantity %d for menu item %d: %w",
				in.Quantity, in.MenuItemID, domain.ErrInvalidInput)
		}
		item, err := s.catalog.GetMenuItem(ctx, in.MenuItemID)
		if err != nil {
			return domain.OrderView{}, err
		}
		if item.BusinessID != req.BusinessID {
			return domain.OrderView{}, fmt.Errorf("menu item %d does not belong to business %d: %w",
				in.MenuItemID, req.BusinessID, domain.ErrInvalidReference)
		}
		total += item.Price * float64(in.Quantity)
		lines = append(lines, domain.OrderLine{
			MenuItemID: in.MenuItemID,
			Quantity:   in.Quantity,
			Price:      item.Price,
		})
	}

	view, err := s.orders.CreateOrder(ctx, domain.Order{
		CustomerID: actor.ID,
		BusinessID: req.BusinessID,
		Status:     domain.StatusPending,
		TotalPrice: roundCents(total),
	}, lines)
	if err != nil {
		return domain.OrderView{}, fmt.Errorf("create order: %w", err)
	}

	if err := s.events.OrderCreated(ctx, domain.OrderCreatedEvent{
		OrderID:    view.Order.ID,
		CustomerID: view.Order.CustomerID,
		BusinessID: view.Order.BusinessID,
		TotalPrice: view.Order.TotalPrice,
		CreatedAt:  view.Order.CreatedAt,
	}); err != nil {
		s.lg.Warn("order_created_publish_failed",
			zap.Int64("order_id", view.Order.ID), zap.Error(err))
	}

	s.lg.Info("order_placed",
		zap.Int64("order_id", view.Order.ID),
		zap.Int64("customer_id", actor.ID),
		zap.Int64("business_id", view.Order.BusinessID),
		zap.Float64("total_price", view.Order.TotalPrice))
	return view, nil
}

func (s *OrderService) GetOrder(ctx context.Context, actor auth.Actor, orderID int64) (domain.OrderView, error) {
	view, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.OrderView{}, err
	}
	if view.Order.CustomerID == actor.ID && actor.Role == auth.RoleCustomer {
		return view, nil
	}
	biz, err := s.catalog.GetBusiness(ctx, view.Order.BusinessID)
	if err == nil && biz.OwnerID == actor.ID && actor.Role == auth.RoleBusiness {
		return view, nil
	}
	return domain.OrderView{}, fmt.Errorf("order %d is not yours: %w", orderID, domain.ErrForbidden)
}

func (s *OrderService) ListCustomerOrders(ctx context.Context, actor auth.Actor) ([]domain.OrderView, error) {
	if err := auth.Require(actor, auth.RoleCustomer, "only customers can view their orders"); err != nil {
		return nil, err
	}
	return s.orders.ListByCustomer(ctx, actor.ID)
}

func (s *OrderService) ListBusinessOrders(ctx context.Context, actor auth.Actor, businessID int64) ([]domain.OrderView, error) {
	if err := auth.Require(actor, auth.RoleBusiness, "only businesses can view restaurant orders"); err != nil {
		return nil, err
	}
	biz, err := s.catalog.GetBusiness(ctx, businessID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("business %d is not yours: %w", businessID, domain.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	if biz.OwnerID != actor.ID {
		return nil, fmt.Errorf("business %d is not yours: %w", businessID, domain.ErrForbidden)
	}
	return s.orders.ListByBusiness(ctx, businessID)
}

// AdvanceStatus moves the order forward through pending -> confirmed ->
// delivered. Skipping ahead is allowed, moving back is not, and repeating the
// current status is an idempotent no-op. The first arrival at delivered
// awards floor(total) points atomically with the status write.
func (s *OrderService) AdvanceStatus(ctx context.Context, actor auth.Actor, orderID int64, statusID int) (domain.OrderView, error) {
	if err := auth.Require(actor, auth.RoleBusiness, "only businesses can update order status"); err != nil {
		return domain.OrderView{}, err
	}
	target, err := domain.StatusFromID(statusID)
	if err != nil {
		return domain.OrderView{}, err
	}

	view, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.OrderView{}, err
	}
	biz, err := s.catalog.GetBusiness(ctx, view.Order.BusinessID)
	if err != nil {
		return domain.OrderView{}, fmt.Errorf("resolve order business: %w", err)
	}
	if biz.OwnerID != actor.ID {
		return domain.OrderView{}, fmt.Errorf("order %d belongs to another business: %w", orderID, domain.ErrForbidden)
	}

	if target.Rank() < view.Order.Status.Rank() {
		return domain.OrderView{}, fmt.Errorf("cannot move order from %s back to %s: %w",
			view.Order.Status, target, domain.ErrInvalidInput)
	}
	if target == view.Order.Status {
		return view, nil
	}

	updated, old, applied, err := s.orders.AdvanceStatus(ctx, orderID, target, pointsFor(view.Order.TotalPrice))
	if err != nil {
		return domain.OrderView{}, fmt.Errorf("advance status: %w", err)
	}
	if !applied {
		// lost the race to a concurrent transition; current state wins
		return updated, nil
	}

	if err := s.events.StatusChanged(ctx, domain.StatusChangedEvent{
		OrderID:    updated.Order.ID,
		CustomerID: updated.Order.CustomerID,
		BusinessID: updated.Order.BusinessID,
		OldStatus:  string(old),
		NewStatus:  string(updated.Order.Status),
		ChangedBy:  actor.ID,
		Timestamp:  time.Now().UTC(),
	}); err != nil {
		s.lg.Warn("status_changed_publish_failed",
			zap.Int64("order_id", updated.Order.ID), zap.Error(err))
	}

	s.lg.Info("order_status_changed",
		zap.Int64("order_id", updated.Order.ID),
		zap.String("old_status", string(old)),
		zap.String("new_status", string(updated.Order.Status)))
	return updated, nil
}

// pointsFor is the loyalty accrual rule: one point per whole currency unit.
func pointsFor(total float64) int64 {
	return int64(math.Floor(total))
}

func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}
