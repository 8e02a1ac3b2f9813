package entity

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	StatusPaid           OrderStatus = "PAID"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusFailed         OrderStatus = "FAILED"
)

// ParseOrderStatus reports whether raw names a known order status.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch s := OrderStatus(raw); s {
	case StatusPendingPayment, StatusPaid, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusFailed:
		return s, true
	default:
		return "", false
	}
}

type Address struct {
	Street     string `bson:"street,omitempty" json:"street,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode string `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

// OrderItem is a frozen cart line: the card identity plus the unit price that
// was resolved at checkout time. Later price changes never touch placed orders.
type OrderItem struct {
	CardID       string  `bson:"card_id" json:"card_id"`
	CardName     string  `bson:"card_name" json:"card_name"`
	SetName      string  `bson:"set_name,omitempty" json:"set_name,omitempty"`
	Quantity     int     `bson:"quantity" json:"quantity"`
	PricePerUnit float64 `bson:"price_per_unit" json:"price_per_unit"`
	TotalPrice   float64 `bson:"total_price" json:"total_price"`
}

func NewOrderItem(cardID, cardName, setName string, quantity int, pricePerUnit float64) (*OrderItem, error) {
	if cardID == "" {
		return nil, errors.New("card ID cannot be empty")
	}
	if cardName == "" {
		return nil, errors.New("card name cannot be empty")
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	if pricePerUnit < 0 {
		return nil, errors.New("price per unit cannot be negative")
	}
	return &OrderItem{
		CardID:       cardID,
		CardName:     cardName,
		SetName:      setName,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		TotalPrice:   float64(quantity) * pricePerUnit,
	}, nil
}

type Order struct {
	ID              string      `bson:"_id,omitempty" json:"id"`
	UserID          string      `bson:"user_id" json:"user_id"`
	CustomerEmail   string      `bson:"customer_email,omitempty" json:"customer_email,omitempty"`
	Items           []OrderItem `bson:"items" json:"items"`
	TotalAmount     float64     `bson:"total_amount" json:"total_amount"`
	TotalItems      int         `bson:"total_items" json:"total_items"`
	Status          OrderStatus `bson:"status" json:"status"`
	ShippingAddress Address     `bson:"shipping_address,omitempty" json:"shipping_address,omitempty"`
	CreatedAt       time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `bson:"updated_at" json:"updated_at"`
	Version         int         `bson:"version" json:"-"`
}

func NewOrder(userID, customerEmail string, items []OrderItem, shippingAddr Address) (*Order, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}

	order := &Order{
		UserID:          userID,
		CustomerEmail:   customerEmail,
		Items:           items,
		Status:          StatusPendingPayment,
		ShippingAddress: shippingAddr,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
		Version:         1,
	}
	order.recalculateTotals()
	return order, nil
}

func (o *Order) recalculateTotals() {
	var amount float64
	var count int
	for _, item := range o.Items {
		amount += item.TotalPrice
		count += item.Quantity
	}
	o.TotalAmount = amount
	o.TotalItems = count
}

func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case StatusPendingPayment, StatusPaid, StatusProcessing:
		return true
	default:
		return false
	}
}

func (o *Order) UpdateStatus(newStatus OrderStatus) error {
	if o.Status == newStatus {
		return nil
	}
	validTransitions := map[OrderStatus][]OrderStatus{
		StatusPendingPayment: {StatusPaid, StatusCancelled, StatusFailed},
		StatusPaid:           {StatusProcessing, StatusCancelled},
		StatusProcessing:     {StatusShipped, StatusCancelled},
		StatusShipped:        {StatusDelivered, StatusCancelled},
		StatusDelivered:      {},
		StatusCancelled:      {},
		StatusFailed:         {StatusPendingPayment},
	}
	allowed, ok := validTransitions[o.Status]
	if !ok {
		return fmt.Errorf("cannot transition from unknown status %s", o.Status)
	}
	for _, s := range allowed {
		if s == newStatus {
			o.Status = newStatus
			o.UpdatedAt = time.Now().UTC()
			o.Version++
			return nil
		}
	}
	return fmt.Errorf("invalid status transition from %s to %s", o.Status, newStatus)
}
