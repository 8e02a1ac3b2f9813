package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/repository"
)

type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) GetCardByID(ctx context.Context, cardID string) (*entity.Card, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Card), args.Error(1)
}

func (m *MockCatalogClient) SearchCards(ctx context.Context, query string) ([]entity.Card, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Card), args.Error(1)
}

type MockCardDetailCache struct {
	mock.Mock
}

func (m *MockCardDetailCache) Get(ctx context.Context, cardID string) (*entity.Card, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Card), args.Error(1)
}

func (m *MockCardDetailCache) Set(ctx context.Context, cardID string, card *entity.Card, ttl time.Duration) error {
	args := m.Called(ctx, cardID, card, ttl)
	return args.Error(0)
}

func (m *MockCardDetailCache) Delete(ctx context.Context, cardID string) error {
	args := m.Called(ctx, cardID)
	return args.Error(0)
}

type MockGestionRepository struct {
	mock.Mock
}

func (m *MockGestionRepository) Upsert(ctx context.Context, record *entity.Gestion) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockGestionRepository) GetByCardID(ctx context.Context, cardID string) (*entity.Gestion, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Gestion), args.Error(1)
}

func (m *MockGestionRepository) GetByCardIDs(ctx context.Context, cardIDs []string) (map[string]entity.Gestion, error) {
	args := m.Called(ctx, cardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]entity.Gestion), args.Error(1)
}

func (m *MockGestionRepository) Delete(ctx context.Context, cardID string) error {
	args := m.Called(ctx, cardID)
	return args.Error(0)
}

func (m *MockGestionRepository) List(ctx context.Context, params repository.ListGestionParams) (*repository.ListGestionResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListGestionResult), args.Error(1)
}

const testCacheTTL = 5 * time.Minute

func newCardServiceUnderTest(catalog *MockCatalogClient, cache *MockCardDetailCache, gestionRepo *MockGestionRepository) CardService {
	return NewCardService(catalog, cache, gestionRepo, logger.NoOp{}, CardServiceConfig{CacheTTL: testCacheTTL})
}

func TestCardService_GetCard_CacheMissFetchesAndCaches(t *testing.T) {
	mockCatalog := new(MockCatalogClient)
	mockCache := new(MockCardDetailCache)
	mockGestion := new(MockGestionRepository)
	cardSvc := newCardServiceUnderTest(mockCatalog, mockCache, mockGestion)

	card := purchasableCard("c1", "2.00")
	mockCache.On("Get", mock.Anything, "c1").Return(nil, repository.ErrNotFound).Once()
	mockCatalog.On("GetCardByID", mock.Anything, "c1").Return(card, nil).Once()
	mockCache.On("Set", mock.Anything, "c1", card, testCacheTTL).Return(nil).Once()
	mockGestion.On("GetByCardID", mock.Anything, "c1").Return(nil, repository.ErrNotFound).Once()

	got, err := cardSvc.GetCard(context.Background(), "c1")

	assert.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Nil(t, got.Gestion)
	mockCatalog.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestCardService_GetCard_CacheHitSkipsCatalog(t *testing.T) {
	mockCatalog := new(MockCatalogClient)
	mockCache := new(MockCardDetailCache)
	mockGestion := new(MockGestionRepository)
	cardSvc := newCardServiceUnderTest(mockCatalog, mockCache, mockGestion)

	cached := purchasableCard("c1", "2.00")
	cached.Gestion = &entity.Gestion{CardID: "c1", ActiveForSale: false} // stale overlay
	mockCache.On("Get", mock.Anything, "c1").Return(cached, nil).Once()
	overlay := &entity.Gestion{CardID: "c1", ActiveForSale: true}
	mockGestion.On("GetByCardID", mock.Anything, "c1").Return(overlay, nil).Once()

	got, err := cardSvc.GetCard(context.Background(), "c1")

	assert.NoError(t, err)
	assert.Same(t, overlay, got.Gestion)
	assert.True(t, got.Gestion.ActiveForSale)
	mockCatalog.AssertNotCalled(t, "GetCardByID", mock.Anything, mock.Anything)
}

func TestCardService_GetCard_NotFoundInCatalog(t *testing.T) {
	mockCatalog := new(MockCatalogClient)
	mockCache := new(MockCardDetailCache)
	mockGestion := new(MockGestionRepository)
	cardSvc := newCardServiceUnderTest(mockCatalog, mockCache, mockGestion)

	mockCache.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound).Once()
	mockCatalog.On("GetCardByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound).Once()

	got, err := cardSvc.GetCard(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, got)
}

func TestCardService_GetCard_GestionLookupFailureIsNotFatal(t *testing.T) {
	mockCatalog := new(MockCatalogClient)
	mockCache := new(MockCardDetailCache)
	mockGestion := new(MockGestionRepository)
	cardSvc := newCardServiceUnderTest(mockCatalog, mockCache, mockGestion)

	card := purchasableCard("c1", "2.00")
	mockCache.On("Get", mock.Anything, "c1").Return(card, nil).Once()
	mockGestion.On("GetByCardID", mock.Anything, "c1").Return(nil, errors.New("mongo down")).Once()

	got, err := cardSvc.GetCard(context.Background(), "c1")

	assert.NoError(t, err)
	assert.Nil(t, got.Gestion)
}

func TestCardService_SearchCards_OverlaysBatch(t *testing.T) {
	mockCatalog := new(MockCatalogClient)
	mockCache := new(MockCardDetailCache)
	mockGestion := new(MockGestionRepository)
	cardSvc := newCardServiceUnderTest(mockCatalog, mockCache, mockGestion)

	results := []entity.Card{*purchasableCard("c1", "2.00"), *purchasableCard("c2", "3.00")}
	mockCatalog.On("SearchCards", mock.Anything, "lotus").Return(results, nil).Once()
	mockGestion.On("GetByCardIDs", mock.Anything, []string{"c1", "c2"}).Return(map[string]entity.Gestion{
		"c2": {CardID: "c2", StockLevel: 4, ActiveForSale: true},
	}, nil).Once()

	cards, err := cardSvc.SearchCards(context.Background(), "lotus")

	assert.NoError(t, err)
	assert.Len(t, cards, 2)
	assert.Nil(t, cards[0].Gestion)
	assert.NotNil(t, cards[1].Gestion)
	assert.Equal(t, 4, cards[1].Gestion.StockLevel)
}

func TestCardService_SearchCards_EmptyResultSkipsOverlayLookup(t *testing.T) {
	mockCatalog := new(MockCatalogClient)
	mockCache := new(MockCardDetailCache)
	mockGestion := new(MockGestionRepository)
	cardSvc := newCardServiceUnderTest(mockCatalog, mockCache, mockGestion)

	mockCatalog.On("SearchCards", mock.Anything, "nothing").Return([]entity.Card{}, nil).Once()

	cards, err := cardSvc.SearchCards(context.Background(), "nothing")

	assert.NoError(t, err)
	assert.Empty(t, cards)
	mockGestion.AssertNotCalled(t, "GetByCardIDs", mock.Anything, mock.Anything)
}
