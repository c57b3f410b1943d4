package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Carts idle longer than this are dropped by the store; matches the privacy
// posture of clearing carts rather than letting them linger.
const cartTTL = 30 * 24 * time.Hour

// CartStore persists serialized cart snapshots in Redis under a fixed
// per-session key. It implements the cart service's persistence port.
type CartStore struct {
	redis *RedisClient
}

// NewCartStore creates a new CartStore.
func NewCartStore(redis *RedisClient) *CartStore {
	return &CartStore{redis: redis}
}

func (s *CartStore) key(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// Load returns the serialized cart for a session, or (nil, nil) when no cart
// exists yet.
func (s *CartStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(data), nil
}

// Save overwrites the serialized cart for a session and refreshes its TTL.
func (s *CartStore) Save(ctx context.Context, sessionID string, data []byte) error {
	return s.redis.Set(ctx, s.key(sessionID), string(data), cartTTL)
}

// Delete removes the cart for a session.
func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Delete(ctx, s.key(sessionID))
}
