package repository

import (
	"context"

	"github.com/cardtienda/backend/internal/domain/entity"
)

type UpdateOrderStatusParams struct {
	OrderID string
	Status  entity.OrderStatus
	Version int
}

type ListOrdersParams struct {
	UserID    string
	Status    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

type ListOrdersResult struct {
	Orders      []entity.Order
	TotalCount  int64
	CurrentPage int
	PageSize    int
	TotalPages  int
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) (string, error)
	GetByID(ctx context.Context, orderID string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, params UpdateOrderStatusParams) error
	List(ctx context.Context, params ListOrdersParams) (*ListOrdersResult, error)
}
