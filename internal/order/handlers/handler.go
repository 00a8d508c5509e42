package handlers

import (
	"net/http"
	"strconv"

	"replate/internal/order/service"
)

type Handler struct {
	OrderHandler *OrderHandler
}

func New(svc service.OrderServiceInterface) *Handler {
	return &Handler{OrderHandler: NewOrderHandler(svc)}
}

// param pulls a path value from the route pattern (Go 1.22 ServeMux).
func param(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.PathValue(key), 10, 64)
}
