package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists carts between requests, keyed by the authenticated
// user's id.  Load must return an empty cart (never nil) when the
// user has no saved cart.
type Store interface {
	Load(ctx context.Context, userID uint64) (*Cart, error)
	Save(ctx context.Context, userID uint64, c *Cart) error
}

// RedisStore keeps carts as JSON blobs in Redis under
// "<prefix>:<user_id>" with a sliding TTL.  Carts have no expiry of
// their own; the TTL mirrors the lifecycle of a staff login session.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore builds a RedisStore.  The client must be non-nil;
// callers that failed to connect to Redis should fall back to
// NewMemoryStore instead.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if rdb == nil {
		panic("nil redis client passed to NewRedisStore")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisStore{rdb: rdb, prefix: "cart", ttl: ttl}
}

func (s *RedisStore) key(userID uint64) string {
	return fmt.Sprintf("%s:%d", s.prefix, userID)
}

// Load fetches and decodes the user's cart.  A missing key yields a
// fresh empty cart.
func (s *RedisStore) Load(ctx context.Context, userID uint64) (*Cart, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = map[string]Item{}
	}
	return &c, nil
}

// Save encodes and writes the cart, refreshing the TTL.
func (s *RedisStore) Save(ctx context.Context, userID uint64, c *Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(userID), raw, s.ttl).Err()
}

// MemoryStore is a process-local Store used in tests and as a
// degraded mode when Redis is unreachable at startup.  Carts are
// deep-copied on both load and save so callers never share state
// through the store.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[uint64]*Cart
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[uint64]*Cart{}}
}

// Load returns a copy of the user's cart, or a fresh empty cart.
func (s *MemoryStore) Load(ctx context.Context, userID uint64) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return New(), nil
	}
	return copyCart(c), nil
}

// Save stores a copy of the cart.
func (s *MemoryStore) Save(ctx context.Context, userID uint64, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = copyCart(c)
	return nil
}

func copyCart(c *Cart) *Cart {
	dup := &Cart{
		SessionTypeID: c.SessionTypeID,
		Items:         make(map[string]Item, len(c.Items)),
	}
	for k, v := range c.Items {
		dup.Items[k] = v
	}
	return dup
}
