package store

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"atsea/internal/shop/api"
)

// ValidationError is a client-side rejection: the request never reached
// the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Confirmation is what Checkout hands back. There is no payment processor
// behind it.
type Confirmation struct {
	OrderID int64
	Message string
}

// FetchProducts loads the catalog. A failure degrades to an empty result
// so the view never observes a missing-but-not-errored catalog; the error
// is logged, not surfaced.
func (s *Store) FetchProducts(ctx context.Context) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		s.log.Warn("fetch products failed", zap.Error(err))
		s.Dispatch(ProductsFetched{})
		return
	}
	s.Dispatch(ProductsFetched{Products: products})
}

// FetchCustomers mirrors FetchProducts: degrade to empty, never surface.
func (s *Store) FetchCustomers(ctx context.Context) {
	customers, err := s.api.ListCustomers(ctx)
	if err != nil {
		s.log.Warn("fetch customers failed", zap.Error(err))
		s.Dispatch(CustomersFetched{})
		return
	}
	s.Dispatch(CustomersFetched{Customers: customers})
}

// FetchCart replaces local cart state with the server's. Unlike the list
// fetches this one propagates failure: callers mutating the cart need to
// know the resync did not land.
func (s *Store) FetchCart(ctx context.Context) error {
	lines, err := s.api.GetCart(ctx)
	if err != nil {
		return err
	}
	s.Dispatch(CartFetched{Lines: lines})
	return nil
}

// AddToCart applies an optimistic increment, posts the add, then
// re-fetches the authoritative cart. The server's answer always wins over
// the optimistic overlay. On success the "item added" flag is raised for
// 2.5s.
func (s *Store) AddToCart(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	s.Dispatch(CartAddPending{ProductID: productID, Quantity: quantity})

	if err := s.api.AddToCart(ctx, productID, quantity); err != nil {
		s.Dispatch(CartAddRejected{ProductID: productID, Quantity: quantity})
		return err
	}

	s.flagItemAdded()
	return s.FetchCart(ctx)
}

// RemoveFromCart deletes one line and resyncs. Failures propagate.
func (s *Store) RemoveFromCart(ctx context.Context, productID int64) error {
	if err := s.api.RemoveFromCart(ctx, productID); err != nil {
		return err
	}
	return s.FetchCart(ctx)
}

// ClearCartContents empties the cart and resyncs. Failures propagate.
func (s *Store) ClearCartContents(ctx context.Context) error {
	if err := s.api.ClearCart(ctx); err != nil {
		return err
	}
	return s.FetchCart(ctx)
}

// CreateOrder submits the current cart as an order. An empty cart is
// rejected before any network call. The order id in the request is a
// placeholder the backend replaces. On success the cart is cleared;
// a failed clear does not fail the already-placed order.
func (s *Store) CreateOrder(ctx context.Context) (api.Order, error) {
	qty := s.Snapshot().EffectiveQuantities()
	if len(qty) == 0 {
		return api.Order{}, &ValidationError{Message: "cart is empty"}
	}

	ordered := make(map[string]int, len(qty))
	for id, q := range qty {
		ordered[strconv.FormatInt(id, 10)] = q
	}

	created, err := s.api.CreateOrder(ctx, api.Order{
		OrderID:         -1,
		OrderDate:       time.Now().UTC(),
		ProductsOrdered: ordered,
	})
	if err != nil {
		return api.Order{}, err
	}
	s.Dispatch(OrderCreated{Order: created})

	if err := s.ClearCartContents(ctx); err != nil {
		s.log.Warn("cart clear after order failed", zap.Error(err))
	}
	return created, nil
}

// Checkout is a stub boundary: it places the order and returns a canned
// confirmation.
func (s *Store) Checkout(ctx context.Context) (Confirmation, error) {
	order, err := s.CreateOrder(ctx)
	if err != nil {
		return Confirmation{}, err
	}
	return Confirmation{
		OrderID: order.OrderID,
		Message: "thank you for your order",
	}, nil
}
