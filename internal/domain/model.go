package domain

import "time"

type Order struct {
	ID         int64
	CustomerID int64
	BusinessID int64
	Status     OrderStatus
	TotalPrice float64 // snapshot at creation, never recomputed
	CreatedAt  time.Time
}

type OrderLine struct {
	ID         int64
	OrderID    int64
	MenuItemID int64
	Quantity   int
	Price      float64 // unit price copied from the catalog at order time
}

// OrderView is the read-path aggregate: the order together with its lines,
// assembled as one consistent snapshot.
type OrderView struct {
	Order Order
	Lines []OrderLine
}

type MenuItem struct {
	ID         int64
	BusinessID int64
	Name       string
	Price      float64
	Available  bool
}

type Business struct {
	ID      int64
	OwnerID int64 // account that owns the business; ownership checks compare this to the actor
	Name    string
}

type PointsBalance struct {
	CustomerID  int64
	Points      int64
	LastUpdated time.Time
}
