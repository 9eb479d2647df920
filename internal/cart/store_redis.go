package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cartKeyPrefix = "cart:"

// RedisStore keeps carts in Redis with a 24h TTL. When Redis is
// unreachable it serves from an in-memory store so shopping keeps working
// across a cache outage; carts written during the outage stay local.
type RedisStore struct {
	rdb      *redis.Client
	fallback *MemStore
	log      *zap.Logger

	once sync.Once // logs the outage once, not per request
}

func NewRedisStore(rdb *redis.Client, log *zap.Logger) *RedisStore {
	return &RedisStore{
		rdb:      rdb,
		fallback: NewMemStore(),
		log:      log,
	}
}

func (s *RedisStore) logUnavailable(err error) {
	s.once.Do(func() {
		s.log.Warn("redis unavailable, serving carts from memory", zap.Error(err))
	})
}

func (s *RedisStore) load(ctx context.Context, owner string) ([]Item, bool, error) {
	raw, err := s.rdb.Get(ctx, cartKeyPrefix+owner).Bytes()
	if err == redis.Nil {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	var lines []Item
	if err := json.Unmarshal(raw, &lines); err != nil {
		// Corrupt cache entry; treat as empty rather than failing the request.
		return nil, true, nil
	}
	return lines, true, nil
}

func (s *RedisStore) save(ctx context.Context, owner string, lines []Item) error {
	key := cartKeyPrefix + owner
	if len(lines) == 0 {
		return s.rdb.Del(ctx, key).Err()
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, raw, cartTTL).Err()
}

func (s *RedisStore) Get(ctx context.Context, owner string) ([]Item, error) {
	lines, ok, err := s.load(ctx, owner)
	if !ok {
		s.logUnavailable(err)
		return s.fallback.Get(ctx, owner)
	}
	return lines, nil
}

func (s *RedisStore) Add(ctx context.Context, owner string, item Item) error {
	lines, ok, err := s.load(ctx, owner)
	if !ok {
		s.logUnavailable(err)
		return s.fallback.Add(ctx, owner, item)
	}

	if err := s.save(ctx, owner, merge(lines, item)); err != nil {
		s.logUnavailable(err)
		return s.fallback.Add(ctx, owner, item)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, owner string, productID int64) error {
	lines, ok, err := s.load(ctx, owner)
	if !ok {
		s.logUnavailable(err)
		return s.fallback.Remove(ctx, owner, productID)
	}

	if err := s.save(ctx, owner, remove(lines, productID)); err != nil {
		s.logUnavailable(err)
		return s.fallback.Remove(ctx, owner, productID)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, owner string) error {
	if err := s.rdb.Del(ctx, cartKeyPrefix+owner).Err(); err != nil {
		s.logUnavailable(err)
		return s.fallback.Clear(ctx, owner)
	}
	return nil
}
