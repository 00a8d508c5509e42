package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	catalogrepo "replate/internal/catalog/repository"
	"replate/internal/common/httpx"
	"replate/internal/connections/rabbitmq"
	"replate/internal/notify"
	orderhandlers "replate/internal/order/handlers"
	orderrepo "replate/internal/order/repository"
	orderservice "replate/internal/order/service"
	pointshandlers "replate/internal/points/handlers"
	pointsrepo "replate/internal/points/repository"
	pointsservice "replate/internal/points/service"
)

// Run wires repositories, services and handlers, and serves the API until
// the context is canceled.
func Run(ctx context.Context, port int, db *pgxpool.Pool, mq *rabbitmq.Client, lg *zap.Logger) error {
	catalog := catalogrepo.NewCatalogRepository(db)
	points := pointsrepo.NewPointsRepository(db)
	orders := orderrepo.NewOrderRepository(db, points)
	events := notify.NewEventPublisher(mq)

	orderSvc := orderservice.NewOrderService(orders, catalog, events, lg)
	pointsSvc := pointsservice.NewPointsService(points, lg)

	oh := orderhandlers.New(orderSvc)
	ph := pointshandlers.NewPointsHandler(pointsSvc)

	srv := httpx.New(":"+strconv.Itoa(port), Router(oh, ph))
	lg.Info("api_listening", zap.Int("port", port))
	return srv.Run(ctx)
}

// Router mounts the API surface on a Go 1.22 ServeMux.
func Router(oh *orderhandlers.Handler, ph *pointshandlers.PointsHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/orders", oh.OrderHandler.PlaceOrder)
	mux.HandleFunc("GET /api/v1/orders", oh.OrderHandler.ListMine)
	mux.HandleFunc("GET /api/v1/orders/{order_id}", oh.OrderHandler.GetOrder)
	mux.HandleFunc("PUT /api/v1/orders/{order_id}/status", oh.OrderHandler.UpdateStatus)
	mux.HandleFunc("GET /api/v1/orders/restaurant/{business_id}", oh.OrderHandler.ListRestaurant)
	mux.HandleFunc("GET /api/v1/points", ph.GetPoints)
	return mux
}
