package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu     sync.RWMutex
	nextID int64
	m      map[int64]Product
}

func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, m: map[int64]Product{}}
}

// Seed installs the given products, assigning ids in order. Used by the
// server when no database is configured.
func (s *MemStore) Seed(products []Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		p.ProductID = s.nextID
		s.nextID++
		s.m[p.ProductID] = p
	}
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) ListSortedByID(context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (s *MemStore) Get(_ context.Context, id int64) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	return p, ok, nil
}

func (s *MemStore) Create(_ context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.m {
		if existing.Name == p.Name {
			return Product{}, ErrDuplicateName
		}
	}

	p.ProductID = s.nextID
	s.nextID++
	s.m[p.ProductID] = p
	return p, nil
}
