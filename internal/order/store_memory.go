package order

import (
	"context"
	"sync"
)

type MemStore struct {
	mu     sync.RWMutex
	nextID int64
	m      map[int64]Order
}

func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, m: map[int64]Order{}}
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Create(_ context.Context, o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.OrderID = s.nextID
	s.nextID++

	products := make(map[int64]int, len(o.Products))
	for id, q := range o.Products {
		products[id] = q
	}
	o.Products = products

	s.m[o.OrderID] = o
	return o, nil
}

func (s *MemStore) Get(_ context.Context, id int64) (Order, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.m[id]
	return o, ok, nil
}
