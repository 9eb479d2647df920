package catalog

import (
	"context"
	"errors"
)

var ErrDuplicateName = errors.New("product name already exists")

// Product is immutable once created; the storefront treats the catalog as
// read-mostly and merges by ProductID.
type Product struct {
	ProductID   int64   `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

type Store interface {
	ListSortedByID(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, bool, error)
	Create(ctx context.Context, p Product) (Product, error)
	Ping(ctx context.Context) error
}
