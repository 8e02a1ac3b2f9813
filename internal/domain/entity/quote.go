package entity

import (
	"errors"
	"fmt"
	"time"
)

type QuoteStatus string

const (
	QuoteRequested QuoteStatus = "REQUESTED"
	QuoteCountered QuoteStatus = "COUNTERED"
	QuoteAccepted  QuoteStatus = "ACCEPTED"
	QuoteRejected  QuoteStatus = "REJECTED"
	QuoteCancelled QuoteStatus = "CANCELLED"
)

// Quote is one price negotiation between a customer and the shop over a card.
// The customer opens it with a proposed unit price; staff may counter with a
// different price; either side then accepts or rejects the latest offer.
type Quote struct {
	ID            string      `bson:"_id,omitempty" json:"id"`
	UserID        string      `bson:"user_id" json:"user_id"`
	CardID        string      `bson:"card_id" json:"card_id"`
	CardName      string      `bson:"card_name" json:"card_name"`
	Quantity      int         `bson:"quantity" json:"quantity"`
	ProposedPrice float64     `bson:"proposed_price" json:"proposed_price"`
	CounterPrice  FlexPrice   `bson:"counter_price" json:"counter_price"`
	Note          string      `bson:"note,omitempty" json:"note,omitempty"`
	Status        QuoteStatus `bson:"status" json:"status"`
	CreatedAt     time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `bson:"updated_at" json:"updated_at"`
	Version       int         `bson:"version" json:"-"`
}

func NewQuote(userID, cardID, cardName string, quantity int, proposedPrice float64) (*Quote, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if cardID == "" {
		return nil, errors.New("card ID cannot be empty")
	}
	if cardName == "" {
		return nil, errors.New("card name cannot be empty")
	}
	if quantity <= 0 {
		return nil, errors.New("quote quantity must be positive")
	}
	if proposedPrice <= 0 {
		return nil, errors.New("proposed price must be positive")
	}
	return &Quote{
		UserID:        userID,
		CardID:        cardID,
		CardName:      cardName,
		Quantity:      quantity,
		ProposedPrice: proposedPrice,
		Status:        QuoteRequested,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
		Version:       1,
	}, nil
}

// Open reports whether the negotiation is still undecided.
func (q *Quote) Open() bool {
	return q.Status == QuoteRequested || q.Status == QuoteCountered
}

// Counter records a staff counter-offer. Only an open quote can be countered.
func (q *Quote) Counter(price float64, note string) error {
	if !q.Open() {
		return fmt.Errorf("cannot counter quote in status %s", q.Status)
	}
	if price <= 0 {
		return errors.New("counter price must be positive")
	}
	q.CounterPrice = NewFlexPrice(price)
	q.Note = note
	return q.transition(QuoteCountered)
}

func (q *Quote) Accept() error {
	return q.transition(QuoteAccepted)
}

func (q *Quote) Reject() error {
	return q.transition(QuoteRejected)
}

func (q *Quote) Cancel() error {
	return q.transition(QuoteCancelled)
}

// AgreedPrice is the unit price the negotiation settled on: the counter-offer
// when one was made, otherwise the customer's proposal. Only meaningful once
// the quote is accepted.
func (q *Quote) AgreedPrice() float64 {
	if v, ok := q.CounterPrice.Float64(); ok {
		return v
	}
	return q.ProposedPrice
}

func (q *Quote) transition(newStatus QuoteStatus) error {
	if q.Status == newStatus {
		return nil
	}
	validTransitions := map[QuoteStatus][]QuoteStatus{
		QuoteRequested: {QuoteCountered, QuoteAccepted, QuoteRejected, QuoteCancelled},
		QuoteCountered: {QuoteCountered, QuoteAccepted, QuoteRejected, QuoteCancelled},
		QuoteAccepted:  {},
		QuoteRejected:  {},
		QuoteCancelled: {},
	}
	allowed, ok := validTransitions[q.Status]
	if !ok {
		return fmt.Errorf("cannot transition from unknown status %s", q.Status)
	}
	for _, s := range allowed {
		if s == newStatus {
			q.Status = newStatus
			q.UpdatedAt = time.Now().UTC()
			q.Version++
			return nil
		}
	}
	return fmt.Errorf("invalid quote transition from %s to %s", q.Status, newStatus)
}
