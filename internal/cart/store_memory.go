package cart

import (
	"context"
	"sync"
	"time"
)

const cartTTL = 24 * time.Hour

type memCart struct {
	lines     []Item
	expiresAt time.Time
}

type MemStore struct {
	mu sync.Mutex
	m  map[string]memCart
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]memCart)}
}

func (s *MemStore) load(owner string) []Item {
	c, ok := s.m[owner]
	if !ok || time.Now().After(c.expiresAt) {
		delete(s.m, owner)
		return nil
	}
	return c.lines
}

func (s *MemStore) save(owner string, lines []Item) {
	if len(lines) == 0 {
		delete(s.m, owner)
		return
	}
	s.m[owner] = memCart{lines: lines, expiresAt: time.Now().Add(cartTTL)}
}

func (s *MemStore) Get(_ context.Context, owner string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.load(owner)
	out := make([]Item, len(lines))
	copy(out, lines)
	return out, nil
}

func (s *MemStore) Add(_ context.Context, owner string, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(owner, merge(s.load(owner), item))
	return nil
}

func (s *MemStore) Remove(_ context.Context, owner string, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(owner, remove(s.load(owner), productID))
	return nil
}

func (s *MemStore) Clear(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, owner)
	return nil
}
