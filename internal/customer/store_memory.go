package customer

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

type MemStore struct {
	mu         sync.RWMutex
	nextID     int64
	byUsername map[string]Customer
}

func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, byUsername: make(map[string]Customer)}
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Create(_ context.Context, c Customer, password string) (Customer, error) {
	c.Username = normalize(c.Username)
	c.Email = normalize(c.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[c.Username]; ok {
		return Customer{}, ErrUsernameExists
	}
	for _, existing := range s.byUsername {
		if existing.Email == c.Email {
			return Customer{}, ErrEmailExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Customer{}, err
	}

	c.CustomerID = s.nextID
	s.nextID++
	c.PassHash = hash
	c.Enabled = true
	s.byUsername[c.Username] = c
	return c, nil
}

func (s *MemStore) GetByUsername(_ context.Context, username string) (Customer, error) {
	s.mu.RLock()
	c, ok := s.byUsername[normalize(username)]
	s.mu.RUnlock()

	if !ok {
		return Customer{}, ErrNotFound
	}
	return c, nil
}

func (s *MemStore) List(context.Context) ([]Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Customer, 0, len(s.byUsername))
	for _, c := range s.byUsername {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func (s *MemStore) Verify(ctx context.Context, username, password string) (Customer, error) {
	c, err := s.GetByUsername(ctx, username)
	if err != nil {
		return Customer{}, ErrInvalidCredentials
	}
	if !c.Enabled {
		return Customer{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(c.PassHash, []byte(password)); err != nil {
		return Customer{}, ErrInvalidCredentials
	}
	return c, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
