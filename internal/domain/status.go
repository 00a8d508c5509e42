package domain

import "fmt"

// OrderStatus is the lifecycle state of an order. Statuses are stored by
// numeric id (the order_status table) and ordered: a transition may only move
// the order forward.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusDelivered OrderStatus = "delivered"
)

var statusIDs = map[OrderStatus]int{
	StatusPending:   1,
	StatusConfirmed: 2,
	StatusDelivered: 3,
}

var statusNames = map[int]OrderStatus{
	1: StatusPending,
	2: StatusConfirmed,
	3: StatusDelivered,
}

// ID returns the stable numeric id used in storage and on the wire.
func (s OrderStatus) ID() int { return statusIDs[s] }

// Rank orders statuses for transition checks. Equal ids, kept separate so the
// wire encoding could change without touching transition logic.
func (s OrderStatus) Rank() int { return statusIDs[s] }

func StatusFromID(id int) (OrderStatus, error) {
	s, ok := statusNames[id]
	if !ok {
		return "", fmt.Errorf("unknown status id %d: %w", id, ErrInvalidInput)
	}
	return s, nil
}
