package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/repository"
)

type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) Create(ctx context.Context, quote *entity.Quote) (string, error) {
	args := m.Called(ctx, quote)
	return args.String(0), args.Error(1)
}

func (m *MockQuoteRepository) GetByID(ctx context.Context, quoteID string) (*entity.Quote, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quote), args.Error(1)
}

func (m *MockQuoteRepository) Update(ctx context.Context, quote *entity.Quote, expectedVersion int) error {
	args := m.Called(ctx, quote, expectedVersion)
	return args.Error(0)
}

func (m *MockQuoteRepository) List(ctx context.Context, params repository.ListQuotesParams) (*repository.ListQuotesResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListQuotesResult), args.Error(1)
}

func storedQuote(userID string, status entity.QuoteStatus) *entity.Quote {
	quote, _ := entity.NewQuote(userID, "c1", "Card One", 2, 12.0)
	quote.ID = "quote-1"
	if status == entity.QuoteCountered {
		_ = quote.Counter(10.0, "counter")
	} else {
		quote.Status = status
	}
	return quote
}

func TestQuoteService_RequestQuote_Success(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	mockCards := new(MockCardService)
	mockPublisher := new(MockMessagePublisher)
	quoteSvc := NewQuoteService(mockRepo, mockCards, mockPublisher, logger.NoOp{})

	mockCards.On("GetCard", mock.Anything, "c1").Return(purchasableCard("c1", "15.00"), nil).Once()
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(quote *entity.Quote) bool {
		return quote.UserID == "user1" &&
			quote.CardID == "c1" &&
			quote.Quantity == 2 &&
			quote.ProposedPrice == 12.0 &&
			quote.Status == entity.QuoteRequested
	})).Return("quote-1", nil).Once()
	mockPublisher.On("Publish", mock.Anything, "quote.updated", mock.Anything).Return(nil).Once()

	quote, err := quoteSvc.RequestQuote(context.Background(), "user1", "c1", 2, 12.0)

	assert.NoError(t, err)
	assert.Equal(t, "quote-1", quote.ID)
	assert.Equal(t, "Card c1", quote.CardName)
	mockRepo.AssertExpectations(t)
	mockCards.AssertExpectations(t)
}

func TestQuoteService_RequestQuote_Fail_UnknownCard(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	mockCards := new(MockCardService)
	quoteSvc := NewQuoteService(mockRepo, mockCards, nil, logger.NoOp{})

	mockCards.On("GetCard", mock.Anything, "missing").Return(nil, repository.ErrNotFound).Once()

	quote, err := quoteSvc.RequestQuote(context.Background(), "user1", "missing", 1, 5.0)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, quote)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuoteService_CounterQuote_Success(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	mockPublisher := new(MockMessagePublisher)
	quoteSvc := NewQuoteService(mockRepo, new(MockCardService), mockPublisher, logger.NoOp{})

	mockRepo.On("GetByID", mock.Anything, "quote-1").Return(storedQuote("user1", entity.QuoteRequested), nil).Once()
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(quote *entity.Quote) bool {
		return quote.Status == entity.QuoteCountered && quote.Note == "fair price"
	}), 1).Return(nil).Once()
	mockPublisher.On("Publish", mock.Anything, "quote.updated", mock.Anything).Return(nil).Once()

	quote, err := quoteSvc.CounterQuote(context.Background(), "quote-1", 10.5, "fair price")

	assert.NoError(t, err)
	assert.Equal(t, entity.QuoteCountered, quote.Status)
	v, ok := quote.CounterPrice.Float64()
	assert.True(t, ok)
	assert.Equal(t, 10.5, v)
	mockRepo.AssertExpectations(t)
}

func TestQuoteService_AcceptQuote_AdminDecidesRequested(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	quoteSvc := NewQuoteService(mockRepo, new(MockCardService), nil, logger.NoOp{})

	mockRepo.On("GetByID", mock.Anything, "quote-1").Return(storedQuote("user1", entity.QuoteRequested), nil).Once()
	mockRepo.On("Update", mock.Anything, mock.Anything, 1).Return(nil).Once()

	quote, err := quoteSvc.AcceptQuote(context.Background(), "quote-1", "admin-1", true)

	assert.NoError(t, err)
	assert.Equal(t, entity.QuoteAccepted, quote.Status)
	assert.Equal(t, 12.0, quote.AgreedPrice())
}

func TestQuoteService_AcceptQuote_CustomerCannotDecideOwnRequest(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	quoteSvc := NewQuoteService(mockRepo, new(MockCardService), nil, logger.NoOp{})

	mockRepo.On("GetByID", mock.Anything, "quote-1").Return(storedQuote("user1", entity.QuoteRequested), nil).Once()

	quote, err := quoteSvc.AcceptQuote(context.Background(), "quote-1", "user1", false)

	assert.ErrorIs(t, err, ErrQuoteForbidden)
	assert.Nil(t, quote)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuoteService_AcceptQuote_OwnerDecidesCountered(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	quoteSvc := NewQuoteService(mockRepo, new(MockCardService), nil, logger.NoOp{})

	countered := storedQuote("user1", entity.QuoteCountered)
	mockRepo.On("GetByID", mock.Anything, "quote-1").Return(countered, nil).Once()
	mockRepo.On("Update", mock.Anything, mock.Anything, countered.Version).Return(nil).Once()

	quote, err := quoteSvc.AcceptQuote(context.Background(), "quote-1", "user1", false)

	assert.NoError(t, err)
	assert.Equal(t, entity.QuoteAccepted, quote.Status)
	assert.Equal(t, 10.0, quote.AgreedPrice())
}

func TestQuoteService_AcceptQuote_StrangerCannotDecideCountered(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	quoteSvc := NewQuoteService(mockRepo, new(MockCardService), nil, logger.NoOp{})

	mockRepo.On("GetByID", mock.Anything, "quote-1").Return(storedQuote("user1", entity.QuoteCountered), nil).Once()

	quote, err := quoteSvc.AcceptQuote(context.Background(), "quote-1", "stranger", false)

	assert.ErrorIs(t, err, ErrQuoteForbidden)
	assert.Nil(t, quote)
}

func TestQuoteService_RejectQuote_ClosedQuote(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	quoteSvc := NewQuoteService(mockRepo, new(MockCardService), nil, logger.NoOp{})

	mockRepo.On("GetByID", mock.Anything, "quote-1").Return(storedQuote("user1", entity.QuoteAccepted), nil).Once()

	quote, err := quoteSvc.RejectQuote(context.Background(), "quote-1", "admin-1", true)

	assert.Error(t, err)
	assert.Nil(t, quote)
}

func TestQuoteService_CancelQuote_OwnerOnly(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	quoteSvc := NewQuoteService(mockRepo, new(MockCardService), nil, logger.NoOp{})

	mockRepo.On("GetByID", mock.Anything, "quote-1").Return(storedQuote("user1", entity.QuoteRequested), nil).Twice()
	mockRepo.On("Update", mock.Anything, mock.Anything, 1).Return(nil).Once()

	quote, err := quoteSvc.CancelQuote(context.Background(), "quote-1", "stranger")
	assert.ErrorIs(t, err, ErrQuoteForbidden)
	assert.Nil(t, quote)

	quote, err = quoteSvc.CancelQuote(context.Background(), "quote-1", "user1")
	assert.NoError(t, err)
	assert.Equal(t, entity.QuoteCancelled, quote.Status)
}

func TestQuoteService_SaveQuote_OptimisticLockSurfaces(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	quoteSvc := NewQuoteService(mockRepo, new(MockCardService), nil, logger.NoOp{})

	mockRepo.On("GetByID", mock.Anything, "quote-1").Return(storedQuote("user1", entity.QuoteRequested), nil).Once()
	mockRepo.On("Update", mock.Anything, mock.Anything, 1).Return(repository.ErrOptimisticLock).Once()

	quote, err := quoteSvc.CounterQuote(context.Background(), "quote-1", 9.0, "")

	assert.ErrorIs(t, err, repository.ErrOptimisticLock)
	assert.Nil(t, quote)
}

func TestQuoteService_GetQuoteByID_Ownership(t *testing.T) {
	mockRepo := new(MockQuoteRepository)
	quoteSvc := NewQuoteService(mockRepo, new(MockCardService), nil, logger.NoOp{})

	mockRepo.On("GetByID", mock.Anything, "quote-1").Return(storedQuote("user1", entity.QuoteRequested), nil).Twice()

	quote, err := quoteSvc.GetQuoteByID(context.Background(), "quote-1", "user1", false)
	assert.NoError(t, err)
	assert.Equal(t, "quote-1", quote.ID)

	quote, err = quoteSvc.GetQuoteByID(context.Background(), "quote-1", "stranger", false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, quote)
}
