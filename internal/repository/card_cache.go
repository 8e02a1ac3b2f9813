package repository

import (
	"context"
	"time"

	"github.com/cardtienda/backend/internal/domain/entity"
)

// CardDetailCache is a read-through cache for catalog card snapshots, so hot
// cards do not hammer the external catalog on every cart render.
type CardDetailCache interface {
	Get(ctx context.Context, cardID string) (*entity.Card, error)
	Set(ctx context.Context, cardID string, card *entity.Card, ttl time.Duration) error
	Delete(ctx context.Context, cardID string) error
}
