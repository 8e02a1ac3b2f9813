package repository

import (
	"context"

	"github.com/cardtienda/backend/internal/domain/entity"
)

type ListGestionParams struct {
	ActiveOnly bool
	Page       int
	PageSize   int
}

type ListGestionResult struct {
	Records     []entity.Gestion
	TotalCount  int64
	CurrentPage int
	PageSize    int
	TotalPages  int
}

// GestionRepository stores the admin-maintained inventory overlay, keyed by
// catalog card id.
type GestionRepository interface {
	Upsert(ctx context.Context, record *entity.Gestion) error
	GetByCardID(ctx context.Context, cardID string) (*entity.Gestion, error)
	// GetByCardIDs returns the overlays that exist for the given ids, keyed
	// by card id; ids without an overlay are simply absent from the map.
	GetByCardIDs(ctx context.Context, cardIDs []string) (map[string]entity.Gestion, error)
	Delete(ctx context.Context, cardID string) error
	List(ctx context.Context, params ListGestionParams) (*ListGestionResult, error)
}
