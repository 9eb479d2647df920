package store

import "atsea/internal/shop/api"

// Action is a state transition request. Reducers handle the known set and
// return the state unchanged for anything else.
type Action interface {
	isAction()
}

// ProductsFetched merges the payload into the product map by id.
type ProductsFetched struct {
	Products []api.Product
}

// ClearProducts drops every known product. This is the only way a product
// id leaves the store.
type ClearProducts struct{}

type CustomersFetched struct {
	Customers []api.Customer
}

type ClearCustomers struct{}

// CartFetched replaces the authoritative cart and discards any pending
// optimistic overlay.
type CartFetched struct {
	Lines []api.CartLine
}

// CartAddPending applies an optimistic increment while the add request is
// in flight.
type CartAddPending struct {
	ProductID int64
	Quantity  int
}

// CartAddRejected rolls back the matching optimistic increment.
type CartAddRejected struct {
	ProductID int64
	Quantity  int
}

type SetItemAdded struct {
	Value bool
}

type OrderCreated struct {
	Order api.Order
}

func (ProductsFetched) isAction()  {}
func (ClearProducts) isAction()    {}
func (CustomersFetched) isAction() {}
func (ClearCustomers) isAction()   {}
func (CartFetched) isAction()      {}
func (CartAddPending) isAction()   {}
func (CartAddRejected) isAction()  {}
func (SetItemAdded) isAction()     {}
func (OrderCreated) isAction()     {}
