package store

import "atsea/internal/shop/api"

// reduce is pure: no I/O, no panics, unknown actions return the state
// unchanged. Callers own copying; reduce receives a state it may mutate.
func reduce(s State, a Action) State {
	switch a := a.(type) {
	case ProductsFetched:
		for _, p := range a.Products {
			if _, known := s.Products.ByID[p.ProductID]; !known {
				s.Products.VisibleIDs = append(s.Products.VisibleIDs, p.ProductID)
			}
			s.Products.ByID[p.ProductID] = p
		}
		return s

	case ClearProducts:
		s.Products = ProductsState{ByID: make(map[int64]api.Product)}
		return s

	case CustomersFetched:
		for _, c := range a.Customers {
			s.Customers[c.CustomerID] = c
		}
		return s

	case ClearCustomers:
		s.Customers = make(map[int64]api.Customer)
		return s

	case CartFetched:
		s.Cart.QuantityByID = make(map[int64]int, len(a.Lines))
		for _, l := range a.Lines {
			if l.Quantity > 0 {
				s.Cart.QuantityByID[l.ProductID] = l.Quantity
			}
		}
		// The authoritative fetch wins; optimism is over.
		s.Cart.PendingDelta = make(map[int64]int)
		return s

	case CartAddPending:
		s.Cart.PendingDelta[a.ProductID] += a.Quantity
		return s

	case CartAddRejected:
		s.Cart.PendingDelta[a.ProductID] -= a.Quantity
		if s.Cart.PendingDelta[a.ProductID] == 0 {
			delete(s.Cart.PendingDelta, a.ProductID)
		}
		return s

	case SetItemAdded:
		s.ItemAdded = a.Value
		return s

	case OrderCreated:
		o := a.Order
		s.LastOrder = &o
		return s

	default:
		return s
	}
}
