package domain

import "time"

type OrderLineInput struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type PlaceOrderRequest struct {
	BusinessID int64            `json:"business_id"`
	Items      []OrderLineInput `json:"items"`
}

type UpdateStatusRequest struct {
	StatusID int `json:"status_id"`
}

type OrderLineResponse struct {
	ID         int64   `json:"id"`
	MenuItemID int64   `json:"menu_item_id"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type OrderResponse struct {
	ID         int64               `json:"id"`
	BusinessID int64               `json:"business_id"`
	Status     string              `json:"status"`
	TotalPrice float64             `json:"total_price"`
	CreatedAt  time.Time           `json:"created_at"`
	Items      []OrderLineResponse `json:"items"`
}

type PointsResponse struct {
	Points int64 `json:"points"`
}

// NewOrderResponse flattens the aggregate for the wire.
func NewOrderResponse(v OrderView) OrderResponse {
	items := make([]OrderLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		items = append(items, OrderLineResponse{
			ID: l.ID, MenuItemID: l.MenuItemID, Quantity: l.Quantity, Price: l.Price,
		})
	}
	return OrderResponse{
		ID:         v.Order.ID,
		BusinessID: v.Order.BusinessID,
		Status:     string(v.Order.Status),
		TotalPrice: v.Order.TotalPrice,
		CreatedAt:  v.Order.CreatedAt,
		Items:      items,
	}
}
