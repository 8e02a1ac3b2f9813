package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardtienda/backend/internal/adapter/catalog"
	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/repository"
)

const (
	defaultCardCacheTTL = 5 * time.Minute
)

// CardService resolves card snapshots: catalog lookups with a cache-aside
// layer, overlaid with the shop's local gestion records.
type CardService interface {
	GetCard(ctx context.Context, cardID string) (*entity.Card, error)
	SearchCards(ctx context.Context, query string) ([]entity.Card, error)
}

type cardService struct {
	catalogClient catalog.Client
	cardCache     repository.CardDetailCache
	gestionRepo   repository.GestionRepository
	log           logger.Logger
	cacheTTL      time.Duration
}

type CardServiceConfig struct {
	CacheTTL time.Duration
}

func NewCardService(
	catalogClient catalog.Client,
	cardCache repository.CardDetailCache,
	gestionRepo repository.GestionRepository,
	log logger.Logger,
	cfg CardServiceConfig,
) CardService {
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCardCacheTTL
	}
	return &cardService{
		catalogClient: catalogClient,
		cardCache:     cardCache,
		gestionRepo:   gestionRepo,
		log:           log,
		cacheTTL:      cacheTTL,
	}
}

// GetCard returns the catalog snapshot for cardID with its gestion overlay
// attached when one exists. The overlay is fetched fresh on every call so
// admin price overrides take effect without waiting out the card cache.
func (s *cardService) GetCard(ctx context.Context, cardID string) (*entity.Card, error) {
	card, err := s.fetchCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	gestion, err := s.gestionRepo.GetByCardID(ctx, cardID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warnf("Failed to load gestion overlay for card %s: %v", cardID, err)
	}
	card.Gestion = gestion
	return card, nil
}

func (s *cardService) fetchCard(ctx context.Context, cardID string) (*entity.Card, error) {
	cached, cacheErr := s.cardCache.Get(ctx, cardID)
	if cacheErr == nil && cached != nil {
		s.log.Debugf("Card %s found in cache", cardID)
		// The overlay is attached per call; never serve a stale one.
		cached.Gestion = nil
		return cached, nil
	}
	if cacheErr != nil && !errors.Is(cacheErr, repository.ErrNotFound) {
		s.log.Warnf("Error getting card %s from cache: %v. Fetching from catalog.", cardID, cacheErr)
	}

	card, err := s.catalogClient.GetCardByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("card %s not found or catalog unavailable: %w", cardID, err)
	}
	if errSetCache := s.cardCache.Set(ctx, cardID, card, s.cacheTTL); errSetCache != nil {
		s.log.Warnf("Failed to cache card %s: %v", cardID, errSetCache)
	}
	return card, nil
}

// SearchCards runs a free-text catalog search and overlays gestion records in
// one batch. Search results are not cached; only direct lookups are.
func (s *cardService) SearchCards(ctx context.Context, query string) ([]entity.Card, error) {
	cards, err := s.catalogClient.SearchCards(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	if len(cards) == 0 {
		return cards, nil
	}

	ids := make([]string, len(cards))
	for i := range cards {
		ids[i] = cards[i].ID
	}
	overlays, err := s.gestionRepo.GetByCardIDs(ctx, ids)
	if err != nil {
		s.log.Warnf("Failed to load gestion overlays for search results: %v", err)
		return cards, nil
	}
	for i := range cards {
		if overlay, ok := overlays[cards[i].ID]; ok {
			g := overlay
			cards[i].Gestion = &g
		}
	}
	return cards, nil
}
