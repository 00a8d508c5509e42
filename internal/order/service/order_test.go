package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"replate/internal/auth"
	"replate/internal/domain"
)

type fakeCatalog struct {
	businesses map[int64]domain.Business
	items      map[int64]domain.MenuItem
}

func (c *fakeCatalog) GetMenuItem(_ context.Context, id int64) (domain.MenuItem, error) {
	m, ok := c.items[id]
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("menu item %d: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

func (c *fakeCatalog) GetBusiness(_ context.Context, id int64) (domain.Business, error) {
	b, ok := c.businesses[id]
	if !ok {
		return domain.Business{}, fmt.Errorf("business %d: %w", id, domain.ErrNotFound)
	}
	return b, nil
}

type award struct {
	customerID int64
	amount     int64
}

type fakeOrderRepo struct {
	nextID int64
	orders map[int64]domain.OrderView
	awards []award
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]domain.OrderView)}
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, o domain.Order, lines []domain.OrderLine) (domain.OrderView, error) {
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt = time.Now().UTC()
	for i := range lines {
		lines[i].ID = int64(i + 1)
		lines[i].OrderID = o.ID
	}
	v := domain.OrderView{Order: o, Lines: lines}
	r.orders[o.ID] = v
	return v, nil
}

func (r *fakeOrderRepo) GetOrder(_ context.Context, id int64) (domain.OrderView, error) {
	v, ok := r.orders[id]
	if !ok {
		return domain.OrderView{}, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (r *fakeOrderRepo) ListByCustomer(_ context.Context, customerID int64) ([]domain.OrderView, error) {
	var out []domain.OrderView
	for id := r.nextID; id >= 1; id-- {
		if v, ok := r.orders[id]; ok && v.Order.CustomerID == customerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListByBusiness(_ context.Context, businessID int64) ([]domain.OrderView, error) {
	var out []domain.OrderView
	for id := r.nextID; id >= 1; id-- {
		if v, ok := r.orders[id]; ok && v.Order.BusinessID == businessID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) AdvanceStatus(_ context.Context, id int64, target domain.OrderStatus, pointsAmount int64) (domain.OrderView, domain.OrderStatus, bool, error) {
	v, ok := r.orders[id]
	if !ok {
		return domain.OrderView{}, "", false, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	old := v.Order.Status
	if target.Rank() <= old.Rank() {
		return v, old, false, nil
	}
	v.Order.Status = target
	r.orders[id] = v
	if target == domain.StatusDelivered {
		r.awards = append(r.awards, award{customerID: v.Order.CustomerID, amount: pointsAmount})
	}
	return v, old, true, nil
}

type fakePublisher struct {
	created []domain.OrderCreatedEvent
	changed []domain.StatusChangedEvent
	fail    bool
}

func (p *fakePublisher) OrderCreated(_ context.Context, ev domain.OrderCreatedEvent) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.created = append(p.created, ev)
	return nil
}

func (p *fakePublisher) StatusChanged(_ context.Context, ev domain.StatusChangedEvent) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.changed = append(p.changed, ev)
	return nil
}

var (
	customer = auth.Actor{ID: 7, Role: auth.RoleCustomer}
	owner    = auth.Actor{ID: 10, Role: auth.RoleBusiness}
	stranger = auth.Actor{ID: 99, Role: auth.RoleBusiness}
)

func newTestService() (*OrderService, *fakeOrderRepo, *fakeCatalog, *fakePublisher) {
	catalog := &fakeCatalog{
		businesses: map[int64]domain.Business{
			1: {ID: 1, OwnerID: owner.ID, Name: "Replate Kitchen"},
			2: {ID: 2, OwnerID: 20, Name: "Other Place"},
		},
		items: map[int64]domain.MenuItem{
			100: {ID: 100, BusinessID: 1, Name: "Falafel Bowl", Price: 12.20, Available: true},
			101: {ID: 101, BusinessID: 1, Name: "Lentil Soup", Price: 6.50, Available: true},
			200: {ID: 200, BusinessID: 2, Name: "Pad Thai", Price: 9.99, Available: true},
		},
	}
	repo := newFakeOrderRepo()
	pub := &fakePublisher{}
	return NewOrderService(repo, catalog, pub, zap.NewNop()), repo, catalog, pub
}

func placeSampleOrder(t *testing.T, svc *OrderService) domain.OrderView {
	t.Helper()
	view, err := svc.PlaceOrder(context.Background(), customer, domain.PlaceOrderRequest{
		BusinessID: 1,
		Items: []domain.OrderLineInput{
			{MenuItemID: 100, Quantity: 1},
			{MenuItemID: 101, Quantity: 2},
		},
	})
	require.NoError(t, err)
	return view
}

func TestPlaceOrderComputesTotalFromCatalogSnapshot(t *testing.T) {
	svc, _, catalog, pub := newTestService()

	view := placeSampleOrder(t, svc)
	require.InDelta(t, 25.20, view.Order.TotalPrice, 1e-9)
	require.Equal(t, domain.StatusPending, view.Order.Status)
	require.Len(t, view.Lines, 2)
	require.InDelta(t, 12.20, view.Lines[0].Price, 1e-9)
	require.InDelta(t, 6.50, view.Lines[1].Price, 1e-9)
	require.Len(t, pub.created, 1)

	// later menu price changes must not touch the stored snapshot
	catalog.items[100] = domain.MenuItem{ID: 100, BusinessID: 1, Name: "Falafel Bowl", Price: 99.00}
	got, err := svc.GetOrder(context.Background(), customer, view.Order.ID)
	require.NoError(t, err)
	require.InDelta(t, 25.20, got.Order.TotalPrice, 1e-9)
	require.InDelta(t, 12.20, got.Lines[0].Price, 1e-9)
}

func TestPlaceOrderOnlyForCustomers(t *testing.T) {
	svc, repo, _, _ := newTestService()
	_, err := svc.PlaceOrder(context.Background(), owner, domain.PlaceOrderRequest{
		BusinessID: 1,
		Items:      []domain.OrderLineInput{{MenuItemID: 100, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrForbidden)
	require.Empty(t, repo.orders)
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	svc, repo, _, _ := newTestService()
	_, err := svc.PlaceOrder(context.Background(), customer, domain.PlaceOrderRequest{BusinessID: 1})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Empty(t, repo.orders)
}

func TestPlaceOrderRejectsNonPositiveQuantity(t *testing.T) {
	svc, repo, _, _ := newTestService()
	for _, qty := range []int{0, -3} {
		_, err := svc.PlaceOrder(context.Background(), customer, domain.PlaceOrderRequest{
			BusinessID: 1,
			Items:      []domain.OrderLineInput{{MenuItemID: 100, Quantity: qty}},
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	require.Empty(t, repo.orders)
}

func TestPlaceOrderUnknownBusiness(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.PlaceOrder(context.Background(), customer, domain.PlaceOrderRequest{
		BusinessID: 42,
		Items:      []domain.OrderLineInput{{MenuItemID: 100, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlaceOrderUnknownMenuItemNamesOffender(t *testing.T) {
	svc, repo, _, _ := newTestService()
	_, err := svc.PlaceOrder(context.Background(), customer, domain.PlaceOrderRequest{
		BusinessID: 1,
		Items: []domain.OrderLineInput{
			{MenuItemID: 100, Quantity: 1},
			{MenuItemID: 999, Quantity: 1},
		},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Contains(t, err.Error(), "999")
	require.Empty(t, repo.orders)
}

func TestPlaceOrderRejectsCrossBusinessCartWholesale(t *testing.T) {
	svc, repo, _, _ := newTestService()
	_, err := svc.PlaceOrder(context.Background(), customer, domain.PlaceOrderRequest{
		BusinessID: 1,
		Items: []domain.OrderLineInput{
			{MenuItemID: 100, Quantity: 1},
			{MenuItemID: 200, Quantity: 1}, // belongs to business 2
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidReference)
	require.Empty(t, repo.orders)
}

func TestPlaceOrderSurvivesPublishFailure(t *testing.T) {
	svc, repo, _, pub := newTestService()
	pub.fail = true
	view := placeSampleOrder(t, svc)
	require.NotZero(t, view.Order.ID)
	require.Len(t, repo.orders, 1)
}

func TestAdvanceStatusCustomerAlwaysForbidden(t *testing.T) {
	svc, _, _, _ := newTestService()
	view := placeSampleOrder(t, svc)

	// even the order's own customer cannot transition it
	_, err := svc.AdvanceStatus(context.Background(), customer, view.Order.ID, domain.StatusConfirmed.ID())
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAdvanceStatusNonOwnerForbidden(t *testing.T) {
	svc, repo, _, _ := newTestService()
	view := placeSampleOrder(t, svc)

	_, err := svc.AdvanceStatus(context.Background(), stranger, view.Order.ID, domain.StatusConfirmed.ID())
	require.ErrorIs(t, err, domain.ErrForbidden)

	got, err := repo.GetOrder(context.Background(), view.Order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, got.Order.Status)
}

func TestAdvanceStatusOrderNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.AdvanceStatus(context.Background(), owner, 404, domain.StatusConfirmed.ID())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdvanceStatusUnknownStatusID(t *testing.T) {
	svc, _, _, _ := newTestService()
	view := placeSampleOrder(t, svc)
	_, err := svc.AdvanceStatus(context.Background(), owner, view.Order.ID, 9)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdvanceStatusNoBackwardTransitions(t *testing.T) {
	svc, _, _, _ := newTestService()
	view := placeSampleOrder(t, svc)

	_, err := svc.AdvanceStatus(context.Background(), owner, view.Order.ID, domain.StatusConfirmed.ID())
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(context.Background(), owner, view.Order.ID, domain.StatusPending.ID())
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeliveredAwardsFloorOfTotalOnce(t *testing.T) {
	svc, repo, _, pub := newTestService()
	view := placeSampleOrder(t, svc) // total 25.20

	got, err := svc.AdvanceStatus(context.Background(), owner, view.Order.ID, domain.StatusDelivered.ID())
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivered, got.Order.Status)
	require.Equal(t, []award{{customerID: customer.ID, amount: 25}}, repo.awards)
	require.Len(t, pub.changed, 1)
	require.Equal(t, string(domain.StatusPending), pub.changed[0].OldStatus)
	require.Equal(t, string(domain.StatusDelivered), pub.changed[0].NewStatus)

	// repeating the terminal transition is a no-op: no award, no event
	again, err := svc.AdvanceStatus(context.Background(), owner, view.Order.ID, domain.StatusDelivered.ID())
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivered, again.Order.Status)
	require.Len(t, repo.awards, 1)
	require.Len(t, pub.changed, 1)
}

func TestConfirmedThenDeliveredAwardsOnce(t *testing.T) {
	svc, repo, _, _ := newTestService()
	view := placeSampleOrder(t, svc)

	_, err := svc.AdvanceStatus(context.Background(), owner, view.Order.ID, domain.StatusConfirmed.ID())
	require.NoError(t, err)
	require.Empty(t, repo.awards)

	_, err = svc.AdvanceStatus(context.Background(), owner, view.Order.ID, domain.StatusDelivered.ID())
	require.NoError(t, err)
	require.Equal(t, []award{{customerID: customer.ID, amount: 25}}, repo.awards)
}

func TestGetOrderOwnership(t *testing.T) {
	svc, _, _, _ := newTestService()
	view := placeSampleOrder(t, svc)

	_, err := svc.GetOrder(context.Background(), customer, view.Order.ID)
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), owner, view.Order.ID)
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), stranger, view.Order.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	otherCustomer := auth.Actor{ID: 8, Role: auth.RoleCustomer}
	_, err = svc.GetOrder(context.Background(), otherCustomer, view.Order.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListBusinessOrdersRequiresOwnership(t *testing.T) {
	svc, _, _, _ := newTestService()
	placeSampleOrder(t, svc)

	views, err := svc.ListBusinessOrders(context.Background(), owner, 1)
	require.NoError(t, err)
	require.Len(t, views, 1)

	_, err = svc.ListBusinessOrders(context.Background(), stranger, 1)
	require.ErrorIs(t, err, domain.ErrForbidden)

	// a missing business reads as Forbidden, not NotFound
	_, err = svc.ListBusinessOrders(context.Background(), owner, 42)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListCustomerOrdersNewestFirst(t *testing.T) {
	svc, _, _, _ := newTestService()
	first := placeSampleOrder(t, svc)
	second := placeSampleOrder(t, svc)

	views, err := svc.ListCustomerOrders(context.Background(), customer)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, second.Order.ID, views[0].Order.ID)
	require.Equal(t, first.Order.ID, views[1].Order.ID)

	_, err = svc.ListCustomerOrders(context.Background(), owner)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
