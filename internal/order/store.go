package order

import (
	"context"
	"time"
)

// Order is write-once: created via submission, never mutated after.
// Products maps productId to quantity.
type Order struct {
	OrderID    int64
	OrderDate  time.Time
	CustomerID int64
	Products   map[int64]int
	Total      float64
}

type Store interface {
	// Create persists o and returns it with the server-assigned OrderID.
	Create(ctx context.Context, o Order) (Order, error)
	Get(ctx context.Context, id int64) (Order, bool, error)
	Ping(ctx context.Context) error
}
