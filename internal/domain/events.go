package domain

import "time"

// Events published to RabbitMQ after a successful commit.

type OrderCreatedEvent struct {
	OrderID    int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	BusinessID int64     `json:"business_id"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

type StatusChangedEvent struct {
	OrderID    int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	BusinessID int64     `json:"business_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ChangedBy  int64     `json:"changed_by"`
	Timestamp  time.Time `json:"timestamp"`
}
