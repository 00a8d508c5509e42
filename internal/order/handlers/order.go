package handlers

import (
	"encoding/json"
	"net/http"

	"replate/internal/auth"
	"replate/internal/common/httpx"
	"replate/internal/domain"
	"replate/internal/order/service"
)

type OrderHandler struct {
	service service.OrderServiceInterface
}

func NewOrderHandler(svc service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: svc}
}

func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromRequest(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req domain.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "invalid_input", "invalid JSON body")
		return
	}
	view, err := h.service.PlaceOrder(r.Context(), actor, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, domain.NewOrderResponse(view))
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromRequest(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	id, err := param(r, "order_id")
	if err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "invalid_input", "malformed order id")
		return
	}
	view, err := h.service.GetOrder(r.Context(), actor, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, domain.NewOrderResponse(view))
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromRequest(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	views, err := h.service.ListCustomerOrders(r.Context(), actor)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponses(views))
}

func (h *OrderHandler) ListRestaurant(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromRequest(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	businessID, err := param(r, "business_id")
	if err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "invalid_input", "malformed business id")
		return
	}
	views, err := h.service.ListBusinessOrders(r.Context(), actor, businessID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponses(views))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromRequest(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	id, err := param(r, "order_id")
	if err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "invalid_input", "malformed order id")
		return
	}
	var req domain.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "invalid_input", "invalid JSON body")
		return
	}
	view, err := h.service.AdvanceStatus(r.Context(), actor, id, req.StatusID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, domain.NewOrderResponse(view))
}

func toResponses(views []domain.OrderView) []domain.OrderResponse {
	out := make([]domain.OrderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, domain.NewOrderResponse(v))
	}
	return out
}
