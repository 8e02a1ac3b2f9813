package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	cardDetailKeyPrefix = "card_detail:"
)

type cardDetailCache struct {
	client *redis.Client
}

func NewCardDetailCache(client *redis.Client) repository.CardDetailCache {
	return &cardDetailCache{
		client: client,
	}
}

func (c *cardDetailCache) cardDetailKey(cardID string) string {
	return cardDetailKeyPrefix + cardID
}

func (c *cardDetailCache) Get(ctx context.Context, cardID string) (*entity.Card, error) {
	key := c.cardDetailKey(cardID)
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card detail for card %s from redis: %w", cardID, err)
	}

	var card entity.Card
	if err := json.Unmarshal(val, &card); err != nil {
		// A cache entry that no longer decodes is evicted, not repaired.
		_ = c.Delete(ctx, cardID)
		return nil, fmt.Errorf("failed to unmarshal card detail for card %s: %w", cardID, err)
	}
	return &card, nil
}

func (c *cardDetailCache) Set(ctx context.Context, cardID string, card *entity.Card, ttl time.Duration) error {
	if card == nil || cardID == "" {
		return errors.New("cannot cache nil card or card with empty id")
	}
	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to marshal card detail for card %s: %w", cardID, err)
	}
	if err := c.client.Set(ctx, c.cardDetailKey(cardID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set card detail for card %s to redis: %w", cardID, err)
	}
	return nil
}

func (c *cardDetailCache) Delete(ctx context.Context, cardID string) error {
	if err := c.client.Del(ctx, c.cardDetailKey(cardID)).Err(); err != nil {
		return fmt.Errorf("failed to delete card detail for card %s from redis: %w", cardID, err)
	}
	return nil
}
