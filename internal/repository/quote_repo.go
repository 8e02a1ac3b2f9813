package repository

import (
	"context"

	"github.com/cardtienda/backend/internal/domain/entity"
)

type ListQuotesParams struct {
	UserID   string
	Status   string
	Page     int
	PageSize int
}

type ListQuotesResult struct {
	Quotes      []entity.Quote
	TotalCount  int64
	CurrentPage int
	PageSize    int
	TotalPages  int
}

type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) (string, error)
	GetByID(ctx context.Context, quoteID string) (*entity.Quote, error)
	// Update persists the negotiation fields of a quote, guarded by the
	// version the caller loaded; ErrOptimisticLock reports a lost race.
	Update(ctx context.Context, quote *entity.Quote, expectedVersion int) error
	List(ctx context.Context, params ListQuotesParams) (*ListQuotesResult, error)
}
