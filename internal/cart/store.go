package cart

import "context"

// Item is one cart line. Quantities are additive: adding productId 5 twice
// with quantity 1 yields quantity 2.
type Item struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Store is the authoritative cart, keyed by owner ("user:<username>").
// A quantity reaching zero or below removes the line entirely.
type Store interface {
	Get(ctx context.Context, owner string) ([]Item, error)
	Add(ctx context.Context, owner string, item Item) error
	Remove(ctx context.Context, owner string, productID int64) error
	Clear(ctx context.Context, owner string) error
}

// merge applies item to lines, dropping the line if the quantity hits zero.
func merge(lines []Item, item Item) []Item {
	for i, l := range lines {
		if l.ProductID != item.ProductID {
			continue
		}
		q := l.Quantity + item.Quantity
		if q <= 0 {
			return append(lines[:i], lines[i+1:]...)
		}
		lines[i].Quantity = q
		return lines
	}
	if item.Quantity <= 0 {
		return lines
	}
	return append(lines, item)
}

func remove(lines []Item, productID int64) []Item {
	for i, l := range lines {
		if l.ProductID == productID {
			return append(lines[:i], lines[i+1:]...)
		}
	}
	return lines
}
