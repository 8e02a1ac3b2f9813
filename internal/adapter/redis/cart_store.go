package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardtienda/backend/internal/cart"
	"github.com/redis/go-redis/v9"
)

const (
	cartKeyPrefix = "cart:"
)

// cartStore persists each session cart as one raw JSON blob under a fixed
// per-user key. It deliberately does not parse the blob: validation is the
// cart engine's job at load time, and a corrupt blob must round-trip to the
// engine instead of failing here.
type cartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartStore(client *redis.Client, ttl time.Duration) cart.Store {
	return &cartStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *cartStore) cartKey(userID string) string {
	return cartKeyPrefix + userID
}

func (s *cartStore) Load(ctx context.Context, userID string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.cartKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart for user %s from redis: %w", userID, err)
	}
	return val, nil
}

func (s *cartStore) Save(ctx context.Context, userID string, data []byte) error {
	if userID == "" {
		return errors.New("cannot save cart with empty userID")
	}
	if err := s.client.Set(ctx, s.cartKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart for user %s to redis: %w", userID, err)
	}
	return nil
}
