package auth

import (
	"context"
	"sync"
	"time"
)

// RefreshStore tracks issued refresh tokens by jti so logout and rotation
// can revoke them. A jti missing from the store is treated as revoked.
type RefreshStore interface {
	Save(ctx context.Context, jti string, customerID int64, expiresAt time.Time) error
	// Consume atomically checks and deletes the jti, returning whether it
	// was live. Used for rotation: a refresh token is single-use.
	Consume(ctx context.Context, jti string) (bool, error)
	RevokeAll(ctx context.Context, customerID int64) error
}

type refreshRecord struct {
	customerID int64
	expiresAt  time.Time
}

type MemRefreshStore struct {
	mu sync.Mutex
	m  map[string]refreshRecord
}

func NewMemRefreshStore() *MemRefreshStore {
	return &MemRefreshStore{m: make(map[string]refreshRecord)}
}

func (s *MemRefreshStore) Save(_ context.Context, jti string, customerID int64, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[jti] = refreshRecord{customerID: customerID, expiresAt: expiresAt}
	return nil
}

func (s *MemRefreshStore) Consume(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.m[jti]
	if !ok {
		return false, nil
	}
	delete(s.m, jti)
	if time.Now().After(rec.expiresAt) {
		return false, nil
	}
	return true, nil
}

func (s *MemRefreshStore) RevokeAll(_ context.Context, customerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti, rec := range s.m {
		if rec.customerID == customerID {
			delete(s.m, jti)
		}
	}
	return nil
}
