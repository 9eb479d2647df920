// Package store is the storefront's state container: a normalized State,
// pure reducers, and a mutex-serialized dispatch loop. Intents translate
// user actions into API calls plus state transitions.
package store

import (
	"sort"

	"atsea/internal/shop/api"
)

type State struct {
	Products  ProductsState
	Customers map[int64]api.Customer
	Cart      CartState
	// ItemAdded is the transient "added to cart" flag; it auto-clears
	// 2.5s after the last successful add.
	ItemAdded bool
	LastOrder *api.Order
}

// ProductsState is normalized: entities keyed by id plus an ordered list
// of visible ids. Re-fetches merge by id and never drop a known product.
type ProductsState struct {
	ByID       map[int64]api.Product
	VisibleIDs []int64
}

// CartState keeps the server-authoritative quantities separate from the
// optimistic overlay. PendingDelta holds increments applied locally while
// an add is in flight; the next authoritative fetch discards it.
type CartState struct {
	QuantityByID map[int64]int
	PendingDelta map[int64]int
}

type CartItem struct {
	Product  api.Product
	Quantity int
}

func newState() State {
	return State{
		Products:  ProductsState{ByID: make(map[int64]api.Product)},
		Customers: make(map[int64]api.Customer),
		Cart: CartState{
			QuantityByID: make(map[int64]int),
			PendingDelta: make(map[int64]int),
		},
	}
}

// EffectiveQuantities merges the authoritative cart with the pending
// overlay. Quantities at or below zero are dropped.
func (s State) EffectiveQuantities() map[int64]int {
	out := make(map[int64]int, len(s.Cart.QuantityByID))
	for id, q := range s.Cart.QuantityByID {
		out[id] = q
	}
	for id, d := range s.Cart.PendingDelta {
		out[id] += d
	}
	for id, q := range out {
		if q <= 0 {
			delete(out, id)
		}
	}
	return out
}

// CartItems joins effective quantities with known products, ordered by
// product id. Lines whose product is not yet fetched are skipped.
func (s State) CartItems() []CartItem {
	qty := s.EffectiveQuantities()
	ids := make([]int64, 0, len(qty))
	for id := range qty {
		if _, ok := s.Products.ByID[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make([]CartItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, CartItem{Product: s.Products.ByID[id], Quantity: qty[id]})
	}
	return items
}

// CartTotal is always recomputed from quantities and current prices,
// never cached.
func (s State) CartTotal() float64 {
	var total float64
	for id, q := range s.EffectiveQuantities() {
		if p, ok := s.Products.ByID[id]; ok {
			total += p.Price * float64(q)
		}
	}
	return total
}

func clone(s State) State {
	out := s

	out.Products.ByID = make(map[int64]api.Product, len(s.Products.ByID))
	for k, v := range s.Products.ByID {
		out.Products.ByID[k] = v
	}
	out.Products.VisibleIDs = append([]int64(nil), s.Products.VisibleIDs...)

	out.Customers = make(map[int64]api.Customer, len(s.Customers))
	for k, v := range s.Customers {
		out.Customers[k] = v
	}

	out.Cart.QuantityByID = make(map[int64]int, len(s.Cart.QuantityByID))
	for k, v := range s.Cart.QuantityByID {
		out.Cart.QuantityByID[k] = v
	}
	out.Cart.PendingDelta = make(map[int64]int, len(s.Cart.PendingDelta))
	for k, v := range s.Cart.PendingDelta {
		out.Cart.PendingDelta[k] = v
	}

	if s.LastOrder != nil {
		o := *s.LastOrder
		out.LastOrder = &o
	}
	return out
}
