package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardtienda/backend/internal/cart"
	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/pricing"
)

// CartLineView is one cart line priced for display.
type CartLineView struct {
	CardID    string  `json:"card_id"`
	Name      string  `json:"name"`
	SetName   string  `json:"set_name,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// CartView is the cart as the storefront renders it: lines plus derived
// totals and the capacity flag the UI uses to gate the add-to-cart action.
type CartView struct {
	Lines      []CartLineView `json:"lines"`
	TotalItems int            `json:"total_items"`
	TotalPrice float64        `json:"total_price"`
	CanAddMore bool           `json:"can_add_more"`
}

// ErrNotPurchasable marks cards refused at the cart door: flagged inactive
// by gestion or resolving to a zero price.
var ErrNotPurchasable = errors.New("card is not purchasable")

// CartService orchestrates the per-session cart engines. Purchasability
// policy lives here, not in the engine: cards flagged inactive by gestion or
// resolving to a zero price are refused before they reach the cart.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*CartView, error)
	AddItem(ctx context.Context, userID, cardID string) (*CartView, error)
	UpdateQuantity(ctx context.Context, userID, cardID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, cardID string) (*CartView, error)
	ClearCart(ctx context.Context, userID string) error
}

type cartService struct {
	sessions *cart.SessionManager
	cards    CardService
	log      logger.Logger
}

func NewCartService(sessions *cart.SessionManager, cards CardService, log logger.Logger) CartService {
	return &cartService{
		sessions: sessions,
		cards:    cards,
		log:      log,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	engine := s.sessions.Engine(ctx, userID)
	return buildCartView(engine), nil
}

func (s *cartService) AddItem(ctx context.Context, userID, cardID string) (*CartView, error) {
	s.log.Infof("Adding card to cart: UserID=%s, CardID=%s", userID, cardID)

	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		s.log.Errorf("Failed to get card %s for add to cart: %v", cardID, err)
		return nil, fmt.Errorf("could not resolve card %s: %w", cardID, err)
	}

	if card.Gestion != nil && !card.Gestion.ActiveForSale {
		s.log.Warnf("Attempted to add card %s (ID: %s) flagged inactive for sale", card.Name, cardID)
		return nil, fmt.Errorf("card %s is not available for purchase: %w", card.Name, ErrNotPurchasable)
	}
	if pricing.ResolveUnitPrice(*card) == 0 {
		s.log.Warnf("Attempted to add card %s (ID: %s) with no usable price", card.Name, cardID)
		return nil, fmt.Errorf("card %s has no purchasable price: %w", card.Name, ErrNotPurchasable)
	}

	engine := s.sessions.Engine(ctx, userID)
	engine.AddItem(ctx, *card)
	return buildCartView(engine), nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, cardID string, quantity int) (*CartView, error) {
	s.log.Infof("Updating cart quantity: UserID=%s, CardID=%s, Quantity=%d", userID, cardID, quantity)
	engine := s.sessions.Engine(ctx, userID)
	engine.UpdateQuantity(ctx, cardID, quantity)
	return buildCartView(engine), nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, cardID string) (*CartView, error) {
	s.log.Infof("Removing card from cart: UserID=%s, CardID=%s", userID, cardID)
	engine := s.sessions.Engine(ctx, userID)
	engine.RemoveItem(ctx, cardID)
	return buildCartView(engine), nil
}

func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	s.log.Infof("Clearing cart for user: UserID=%s", userID)
	engine := s.sessions.Engine(ctx, userID)
	engine.Clear(ctx)
	return nil
}

func buildCartView(engine *cart.Engine) *CartView {
	lines := engine.Lines()
	view := &CartView{
		Lines:      make([]CartLineView, 0, len(lines)),
		TotalItems: 0,
		TotalPrice: 0,
	}
	for _, line := range lines {
		unit := pricing.ResolveUnitPrice(line.Card)
		view.Lines = append(view.Lines, CartLineView{
			CardID:    line.Card.ID,
			Name:      line.Card.Name,
			SetName:   line.Card.SetName,
			ImageURL:  line.Card.ImageURL,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			LineTotal: unit * float64(line.Quantity),
		})
		view.TotalItems += line.Quantity
		view.TotalPrice += unit * float64(line.Quantity)
	}
	view.CanAddMore = view.TotalItems < entity.MaxTotalItems
	return view
}
