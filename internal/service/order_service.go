package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardtienda/backend/internal/adapter/email"
	"github.com/cardtienda/backend/internal/adapter/nats"
	"github.com/cardtienda/backend/internal/cart"
	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/pricing"
	"github.com/cardtienda/backend/internal/repository"
)

const (
	natsSubjectOrderCreated       = "order.created"
	natsSubjectOrderStatusUpdated = "order.status.updated"
)

var ErrEmptyCart = errors.New("cannot place order with an empty cart")

type OrderService interface {
	PlaceOrder(ctx context.Context, userID, customerEmail string, shippingAddr entity.Address) (*entity.Order, error)
	GetOrderByID(ctx context.Context, orderID, userID string, isAdmin bool) (*entity.Order, error)
	ListUserOrders(ctx context.Context, userID string, page, pageSize int) (*repository.ListOrdersResult, error)
	CancelUserOrder(ctx context.Context, orderID, userID string) (*entity.Order, error)
	UpdateOrderStatusByAdmin(ctx context.Context, orderID string, newStatus entity.OrderStatus) (*entity.Order, error)
	ListAllOrdersAdmin(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	sessions     *cart.SessionManager
	msgPublisher nats.MessagePublisher
	emailSender  email.Sender
	log          logger.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	sessions *cart.SessionManager,
	msgPublisher nats.MessagePublisher,
	emailSender email.Sender,
	log logger.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		sessions:     sessions,
		msgPublisher: msgPublisher,
		emailSender:  emailSender,
		log:          log,
	}
}

type orderEvent struct {
	OrderID     string  `json:"order_id"`
	UserID      string  `json:"user_id"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	TotalItems  int     `json:"total_items"`
}

// PlaceOrder freezes the session cart into an order: each line's unit price
// is resolved once, here, and written into the order items. The cart is
// cleared only after the order is durably created.
func (s *orderService) PlaceOrder(ctx context.Context, userID, customerEmail string, shippingAddr entity.Address) (*entity.Order, error) {
	s.log.Infof("Placing order for user ID: %s", userID)

	engine := s.sessions.Engine(ctx, userID)
	lines := engine.Lines()
	if len(lines) == 0 {
		s.log.Warnf("User ID %s attempted to place an order with an empty cart", userID)
		return nil, ErrEmptyCart
	}

	orderItems := make([]entity.OrderItem, 0, len(lines))
	for _, line := range lines {
		item, itemErr := entity.NewOrderItem(
			line.Card.ID,
			line.Card.Name,
			line.Card.SetName,
			line.Quantity,
			pricing.ResolveUnitPrice(line.Card),
		)
		if itemErr != nil {
			s.log.Errorf("Failed to create order item for card ID %s: %v", line.Card.ID, itemErr)
			return nil, fmt.Errorf("invalid item in cart (card ID %s): %w", line.Card.ID, itemErr)
		}
		orderItems = append(orderItems, *item)
	}

	order, err := entity.NewOrder(userID, customerEmail, orderItems, shippingAddr)
	if err != nil {
		return nil, fmt.Errorf("could not build order: %w", err)
	}

	orderID, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		s.log.Errorf("Failed to create order for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not create order: %w", err)
	}
	order.ID = orderID
	s.log.Infof("Order %s created for user %s, total %.2f", orderID, userID, order.TotalAmount)

	s.publishOrderEvent(ctx, natsSubjectOrderCreated, order)
	s.sendConfirmationEmail(ctx, order)

	engine.Clear(ctx)
	return order, nil
}

func (s *orderService) publishOrderEvent(ctx context.Context, subject string, order *entity.Order) {
	if s.msgPublisher == nil {
		return
	}
	event := orderEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		TotalItems:  order.TotalItems,
	}
	if err := s.msgPublisher.Publish(ctx, subject, event); err != nil {
		s.log.Warnf("Failed to publish %s event for order %s: %v", subject, order.ID, err)
	}
}

func (s *orderService) sendConfirmationEmail(ctx context.Context, order *entity.Order) {
	if s.emailSender == nil || order.CustomerEmail == "" {
		return
	}
	body := fmt.Sprintf(
		"Thank you for your order %s.\n\nTotal: %s for %d card(s).\nWe will notify you when it ships.\n",
		order.ID,
		pricing.FormatPrice(order.TotalAmount),
		order.TotalItems,
	)
	if err := s.emailSender.Send(ctx, []string{order.CustomerEmail}, "Order confirmation "+order.ID, body); err != nil {
		s.log.Warnf("Failed to send confirmation email for order %s: %v", order.ID, err)
	}
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID, userID string, isAdmin bool) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}
	if !isAdmin && order.UserID != userID {
		s.log.Warnf("User %s attempted to access order %s belonging to user %s", userID, orderID, order.UserID)
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID string, page, pageSize int) (*repository.ListOrdersResult, error) {
	result, err := s.orderRepo.List(ctx, repository.ListOrdersParams{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list orders for user %s: %w", userID, err)
	}
	return result, nil
}

func (s *orderService) CancelUserOrder(ctx context.Context, orderID, userID string) (*entity.Order, error) {
	s.log.Infof("Cancelling order %s for user %s", orderID, userID)

	order, err := s.GetOrderByID(ctx, orderID, userID, false)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		return nil, fmt.Errorf("order %s in status %s cannot be cancelled", orderID, order.Status)
	}
	return s.applyStatus(ctx, order, entity.StatusCancelled)
}

func (s *orderService) UpdateOrderStatusByAdmin(ctx context.Context, orderID string, newStatus entity.OrderStatus) (*entity.Order, error) {
	s.log.Infof("Admin updating order %s to status %s", orderID, newStatus)

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}
	return s.applyStatus(ctx, order, newStatus)
}

func (s *orderService) applyStatus(ctx context.Context, order *entity.Order, newStatus entity.OrderStatus) (*entity.Order, error) {
	previousVersion := order.Version
	if err := order.UpdateStatus(newStatus); err != nil {
		return nil, err
	}
	err := s.orderRepo.UpdateStatus(ctx, repository.UpdateOrderStatusParams{
		OrderID: order.ID,
		Status:  order.Status,
		Version: previousVersion,
	})
	if err != nil {
		s.log.Errorf("Failed to persist status %s for order %s: %v", newStatus, order.ID, err)
		return nil, fmt.Errorf("could not update order status: %w", err)
	}
	s.publishOrderEvent(ctx, natsSubjectOrderStatusUpdated, order)
	return order, nil
}

func (s *orderService) ListAllOrdersAdmin(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	result, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("could not list orders: %w", err)
	}
	return result, nil
}
