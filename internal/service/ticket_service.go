package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/pricing"
	"github.com/cardtienda/backend/internal/repository"
)

// TicketService renders a plain-text ticket for a placed order.
type TicketService interface {
	GenerateOrderTicket(ctx context.Context, orderID, userID string, isAdmin bool) ([]byte, string, error)
}

type ticketService struct {
	orders OrderService
	log    logger.Logger
}

func NewTicketService(orders OrderService, log logger.Logger) TicketService {
	return &ticketService{
		orders: orders,
		log:    log,
	}
}

func (s *ticketService) GenerateOrderTicket(ctx context.Context, orderID, userID string, isAdmin bool) ([]byte, string, error) {
	s.log.Infof("Generating ticket for order ID: %s, requested by user ID: %s", orderID, userID)

	order, err := s.orders.GetOrderByID(ctx, orderID, userID, isAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", fmt.Errorf("order with ID %s not found: %w", orderID, repository.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to retrieve order: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order: %s\nStatus: %s\nPlaced: %s\n\n", order.ID, order.Status, order.CreatedAt.Format("2006-01-02 15:04"))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s (x%d) @ %s = %s\n",
			item.CardName,
			item.Quantity,
			pricing.FormatPrice(item.PricePerUnit),
			pricing.FormatPrice(item.TotalPrice),
		)
	}
	fmt.Fprintf(&b, "\nTotal: %s for %d card(s)\n", pricing.FormatPrice(order.TotalAmount), order.TotalItems)

	fileName := fmt.Sprintf("ticket_%s.txt", order.ID)
	return []byte(b.String()), fileName, nil
}
