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

func TestTicketService_GenerateOrderTicket(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	orderSvc := NewOrderService(mockRepo, newTestSessions(), nil, nil, logger.NoOp{})
	ticketSvc := NewTicketService(orderSvc, logger.NoOp{})

	item1, _ := entity.NewOrderItem("c1", "Black Lotus", "Alpha", 1, 100.0)
	item2, _ := entity.NewOrderItem("c2", "Giant Growth", "Beta", 4, 0.25)
	order, _ := entity.NewOrder("user1", "", []entity.OrderItem{*item1, *item2}, entity.Address{})
	order.ID = "order-1"
	mockRepo.On("GetByID", mock.Anything, "order-1").Return(order, nil).Once()

	body, filename, err := ticketSvc.GenerateOrderTicket(context.Background(), "order-1", "user1", false)

	assert.NoError(t, err)
	assert.Equal(t, "ticket_order-1.txt", filename)
	text := string(body)
	assert.Contains(t, text, "Order: order-1")
	assert.Contains(t, text, "Black Lotus (x1) @ 100.00 = 100.00")
	assert.Contains(t, text, "Giant Growth (x4) @ 0.25 = 1.00")
	assert.Contains(t, text, "Total: 101.00 for 5 card(s)")
}

func TestTicketService_GenerateOrderTicket_NotOwner(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	orderSvc := NewOrderService(mockRepo, newTestSessions(), nil, nil, logger.NoOp{})
	ticketSvc := NewTicketService(orderSvc, logger.NoOp{})

	item, _ := entity.NewOrderItem("c1", "Card", "", 1, 1.0)
	order, _ := entity.NewOrder("user1", "", []entity.OrderItem{*item}, entity.Address{})
	order.ID = "order-1"
	mockRepo.On("GetByID", mock.Anything, "order-1").Return(order, nil).Once()

	body, filename, err := ticketSvc.GenerateOrderTicket(context.Background(), "order-1", "stranger", false)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, body)
	assert.Empty(t, filename)
}
