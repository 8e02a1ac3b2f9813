package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardtienda/backend/internal/adapter/catalog"
	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/repository"
)

// GestionService maintains the local inventory overlay: stock, the
// active-for-sale flag, admin price overrides, and the cached catalog price
// snapshot that keeps pricing usable when the catalog is unreachable.
type GestionService interface {
	UpsertGestion(ctx context.Context, params UpsertGestionParams) (*entity.Gestion, error)
	GetGestion(ctx context.Context, cardID string) (*entity.Gestion, error)
	AdjustStock(ctx context.Context, cardID string, delta int) (*entity.Gestion, error)
	RefreshCatalogSnapshot(ctx context.Context, cardID string) (*entity.Gestion, error)
	DeleteGestion(ctx context.Context, cardID string) error
	ListGestion(ctx context.Context, params repository.ListGestionParams) (*repository.ListGestionResult, error)
}

type UpsertGestionParams struct {
	CardID        string
	StockLevel    int
	ActiveForSale bool
	CustomPrice   entity.FlexPrice
}

type gestionService struct {
	gestionRepo   repository.GestionRepository
	catalogClient catalog.Client
	cardCache     repository.CardDetailCache
	log           logger.Logger
}

func NewGestionService(
	gestionRepo repository.GestionRepository,
	catalogClient catalog.Client,
	cardCache repository.CardDetailCache,
	log logger.Logger,
) GestionService {
	return &gestionService{
		gestionRepo:   gestionRepo,
		catalogClient: catalogClient,
		cardCache:     cardCache,
		log:           log,
	}
}

// UpsertGestion creates or replaces the overlay for a card. The card must
// exist in the catalog; its current catalog price is captured as the
// snapshot at the same time.
func (s *gestionService) UpsertGestion(ctx context.Context, params UpsertGestionParams) (*entity.Gestion, error) {
	s.log.Infof("Upserting gestion record for card %s", params.CardID)

	if params.StockLevel < 0 {
		return nil, errors.New("stock level cannot be negative")
	}

	card, err := s.catalogClient.GetCardByID(ctx, params.CardID)
	if err != nil {
		return nil, fmt.Errorf("could not verify card %s in catalog: %w", params.CardID, err)
	}

	record := &entity.Gestion{
		CardID:               card.ID,
		StockLevel:           params.StockLevel,
		ActiveForSale:        params.ActiveForSale,
		CustomPrice:          params.CustomPrice,
		CatalogPriceSnapshot: snapshotPrice(card),
	}
	if err := s.gestionRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("could not save gestion record: %w", err)
	}

	s.invalidateCard(ctx, card.ID)
	return record, nil
}

func (s *gestionService) GetGestion(ctx context.Context, cardID string) (*entity.Gestion, error) {
	record, err := s.gestionRepo.GetByCardID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve gestion record: %w", err)
	}
	return record, nil
}

func (s *gestionService) AdjustStock(ctx context.Context, cardID string, delta int) (*entity.Gestion, error) {
	record, err := s.gestionRepo.GetByCardID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve gestion record: %w", err)
	}

	newLevel := record.StockLevel + delta
	if newLevel < 0 {
		return nil, fmt.Errorf("stock adjustment of %d would leave card %s below zero", delta, cardID)
	}
	record.StockLevel = newLevel
	if err := s.gestionRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("could not save stock adjustment: %w", err)
	}
	return record, nil
}

// RefreshCatalogSnapshot re-reads the catalog and updates the cached price
// snapshot on the overlay.
func (s *gestionService) RefreshCatalogSnapshot(ctx context.Context, cardID string) (*entity.Gestion, error) {
	record, err := s.gestionRepo.GetByCardID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve gestion record: %w", err)
	}

	card, err := s.catalogClient.GetCardByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("could not read catalog for card %s: %w", cardID, err)
	}

	record.CatalogPriceSnapshot = snapshotPrice(card)
	if err := s.gestionRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("could not save refreshed snapshot: %w", err)
	}

	s.invalidateCard(ctx, cardID)
	return record, nil
}

func (s *gestionService) DeleteGestion(ctx context.Context, cardID string) error {
	s.log.Infof("Deleting gestion record for card %s", cardID)
	if err := s.gestionRepo.Delete(ctx, cardID); err != nil {
		return fmt.Errorf("could not delete gestion record: %w", err)
	}
	s.invalidateCard(ctx, cardID)
	return nil
}

func (s *gestionService) ListGestion(ctx context.Context, params repository.ListGestionParams) (*repository.ListGestionResult, error) {
	result, err := s.gestionRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("could not list gestion records: %w", err)
	}
	return result, nil
}

// snapshotPrice captures the card's best raw catalog quote for the overlay,
// in the same precedence the price resolver uses for raw quotes.
func snapshotPrice(card *entity.Card) entity.FlexPrice {
	for _, raw := range []string{card.Prices.USD, card.Prices.USDFoil, card.Prices.EUR} {
		p := entity.ParseFlexPrice(raw)
		if _, ok := p.Float64(); ok {
			return p
		}
	}
	return entity.FlexPrice{}
}

func (s *gestionService) invalidateCard(ctx context.Context, cardID string) {
	if s.cardCache == nil {
		return
	}
	if err := s.cardCache.Delete(ctx, cardID); err != nil {
		s.log.Warnf("Failed to invalidate cached card %s: %v", cardID, err)
	}
}
