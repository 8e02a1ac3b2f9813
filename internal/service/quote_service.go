package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardtienda/backend/internal/adapter/nats"
	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/repository"
)

const (
	natsSubjectQuoteUpdated = "quote.updated"
)

var ErrQuoteForbidden = errors.New("not allowed to act on this quote")

// QuoteService runs the price negotiation between a customer and the shop.
// A customer opens a quote with a proposed price; staff may counter; the
// customer accepts or rejects a counter, staff accepts or rejects the
// original proposal, and the customer can cancel while the quote is open.
type QuoteService interface {
	RequestQuote(ctx context.Context, userID, cardID string, quantity int, proposedPrice float64) (*entity.Quote, error)
	CounterQuote(ctx context.Context, quoteID string, counterPrice float64, note string) (*entity.Quote, error)
	AcceptQuote(ctx context.Context, quoteID, actorID string, isAdmin bool) (*entity.Quote, error)
	RejectQuote(ctx context.Context, quoteID, actorID string, isAdmin bool) (*entity.Quote, error)
	CancelQuote(ctx context.Context, quoteID, userID string) (*entity.Quote, error)
	GetQuoteByID(ctx context.Context, quoteID, userID string, isAdmin bool) (*entity.Quote, error)
	ListUserQuotes(ctx context.Context, userID string, page, pageSize int) (*repository.ListQuotesResult, error)
	ListAllQuotesAdmin(ctx context.Context, params repository.ListQuotesParams) (*repository.ListQuotesResult, error)
}

type quoteService struct {
	quoteRepo    repository.QuoteRepository
	cards        CardService
	msgPublisher nats.MessagePublisher
	log          logger.Logger
}

func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	cards CardService,
	msgPublisher nats.MessagePublisher,
	log logger.Logger,
) QuoteService {
	return &quoteService{
		quoteRepo:    quoteRepo,
		cards:        cards,
		msgPublisher: msgPublisher,
		log:          log,
	}
}

type quoteEvent struct {
	QuoteID string `json:"quote_id"`
	UserID  string `json:"user_id"`
	CardID  string `json:"card_id"`
	Status  string `json:"status"`
}

func (s *quoteService) RequestQuote(ctx context.Context, userID, cardID string, quantity int, proposedPrice float64) (*entity.Quote, error) {
	s.log.Infof("Quote requested: UserID=%s, CardID=%s, Quantity=%d, Price=%.2f", userID, cardID, quantity, proposedPrice)

	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("could not resolve card %s for quote: %w", cardID, err)
	}

	quote, err := entity.NewQuote(userID, card.ID, card.Name, quantity, proposedPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid quote request: %w", err)
	}

	quoteID, err := s.quoteRepo.Create(ctx, quote)
	if err != nil {
		s.log.Errorf("Failed to create quote for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not create quote: %w", err)
	}
	quote.ID = quoteID

	s.publishQuoteEvent(ctx, quote)
	return quote, nil
}

func (s *quoteService) CounterQuote(ctx context.Context, quoteID string, counterPrice float64, note string) (*entity.Quote, error) {
	s.log.Infof("Countering quote %s with price %.2f", quoteID, counterPrice)

	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve quote: %w", err)
	}

	previousVersion := quote.Version
	if err := quote.Counter(counterPrice, note); err != nil {
		return nil, err
	}
	return s.saveQuote(ctx, quote, previousVersion)
}

func (s *quoteService) AcceptQuote(ctx context.Context, quoteID, actorID string, isAdmin bool) (*entity.Quote, error) {
	quote, err := s.loadForDecision(ctx, quoteID, actorID, isAdmin)
	if err != nil {
		return nil, err
	}

	previousVersion := quote.Version
	if err := quote.Accept(); err != nil {
		return nil, err
	}
	s.log.Infof("Quote %s accepted at unit price %.2f", quoteID, quote.AgreedPrice())
	return s.saveQuote(ctx, quote, previousVersion)
}

func (s *quoteService) RejectQuote(ctx context.Context, quoteID, actorID string, isAdmin bool) (*entity.Quote, error) {
	quote, err := s.loadForDecision(ctx, quoteID, actorID, isAdmin)
	if err != nil {
		return nil, err
	}

	previousVersion := quote.Version
	if err := quote.Reject(); err != nil {
		return nil, err
	}
	return s.saveQuote(ctx, quote, previousVersion)
}

func (s *quoteService) CancelQuote(ctx context.Context, quoteID, userID string) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve quote: %w", err)
	}
	if quote.UserID != userID {
		return nil, ErrQuoteForbidden
	}

	previousVersion := quote.Version
	if err := quote.Cancel(); err != nil {
		return nil, err
	}
	return s.saveQuote(ctx, quote, previousVersion)
}

// loadForDecision enforces who may decide the open offer: staff decide a
// customer proposal (REQUESTED), the owning customer decides a staff
// counter-offer (COUNTERED).
func (s *quoteService) loadForDecision(ctx context.Context, quoteID, actorID string, isAdmin bool) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve quote: %w", err)
	}

	switch quote.Status {
	case entity.QuoteRequested:
		if !isAdmin {
			return nil, ErrQuoteForbidden
		}
	case entity.QuoteCountered:
		if isAdmin {
			return nil, ErrQuoteForbidden
		}
		if quote.UserID != actorID {
			return nil, ErrQuoteForbidden
		}
	default:
		return nil, fmt.Errorf("quote %s in status %s is not open", quoteID, quote.Status)
	}
	return quote, nil
}

func (s *quoteService) saveQuote(ctx context.Context, quote *entity.Quote, expectedVersion int) (*entity.Quote, error) {
	if err := s.quoteRepo.Update(ctx, quote, expectedVersion); err != nil {
		s.log.Errorf("Failed to persist quote %s: %v", quote.ID, err)
		return nil, fmt.Errorf("could not update quote: %w", err)
	}
	s.publishQuoteEvent(ctx, quote)
	return quote, nil
}

func (s *quoteService) publishQuoteEvent(ctx context.Context, quote *entity.Quote) {
	if s.msgPublisher == nil {
		return
	}
	event := quoteEvent{
		QuoteID: quote.ID,
		UserID:  quote.UserID,
		CardID:  quote.CardID,
		Status:  string(quote.Status),
	}
	if err := s.msgPublisher.Publish(ctx, natsSubjectQuoteUpdated, event); err != nil {
		s.log.Warnf("Failed to publish quote event for quote %s: %v", quote.ID, err)
	}
}

func (s *quoteService) GetQuoteByID(ctx context.Context, quoteID, userID string, isAdmin bool) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve quote: %w", err)
	}
	if !isAdmin && quote.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return quote, nil
}

func (s *quoteService) ListUserQuotes(ctx context.Context, userID string, page, pageSize int) (*repository.ListQuotesResult, error) {
	result, err := s.quoteRepo.List(ctx, repository.ListQuotesParams{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list quotes for user %s: %w", userID, err)
	}
	return result, nil
}

func (s *quoteService) ListAllQuotesAdmin(ctx context.Context, params repository.ListQuotesParams) (*repository.ListQuotesResult, error) {
	result, err := s.quoteRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("could not list quotes: %w", err)
	}
	return result, nil
}
