package tokens

import "sync"

type MemStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]string)}
}

func (s *MemStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[name]
	return v, ok
}

func (s *MemStore) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[name] = value
	return nil
}

func (s *MemStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, name)
	return nil
}
