package entity

// MaxTotalItems is the hard cap on the summed quantity across all cart lines.
const MaxTotalItems = 99

// CartLine is one (card snapshot, quantity) pair. The persisted layout keeps
// the full card snapshot under "item" so a cart survives catalog hiccups.
type CartLine struct {
	Card     Card `json:"item"`
	Quantity int  `json:"quantity"`
}

// Valid reports whether a line restored from storage is usable: a card with
// identity fields and a strictly positive quantity.
func (l *CartLine) Valid() bool {
	return l.Quantity > 0 && l.Card.Valid()
}

// Cart holds the ordered cart lines for one shopper session. At most one line
// exists per card id; repeated adds consolidate into the existing line.
// Mutations never fail: capacity overflow is resolved by no-op (Add) or by
// silent clamping (SetQuantity), so callers have no error channel to handle.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func NewCart() *Cart {
	return &Cart{Lines: make([]CartLine, 0)}
}

// Line returns the line for the given card id and its index, or (nil, -1).
func (c *Cart) Line(cardID string) (*CartLine, int) {
	for i := range c.Lines {
		if c.Lines[i].Card.ID == cardID {
			return &c.Lines[i], i
		}
	}
	return nil, -1
}

// Add puts one unit of the card into the cart, consolidating with an existing
// line for the same card id. At MaxTotalItems the call is a no-op and Add
// reports false; callers should consult CanAddMore before offering the action.
func (c *Cart) Add(card Card) bool {
	if c.TotalItems() >= MaxTotalItems {
		return false
	}
	if line, _ := c.Line(card.ID); line != nil {
		line.Quantity++
		return true
	}
	c.Lines = append(c.Lines, CartLine{Card: card, Quantity: 1})
	return true
}

// SetQuantity applies a new quantity to the line for cardID. A quantity of
// zero or less removes the line. A quantity that would push the cart past
// MaxTotalItems is clamped down to whatever room the other lines leave.
// Unknown card ids are ignored.
func (c *Cart) SetQuantity(cardID string, quantity int) {
	line, index := c.Line(cardID)
	if line == nil {
		return
	}
	if quantity <= 0 {
		c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
		return
	}
	others := c.TotalItems() - line.Quantity
	if room := MaxTotalItems - others; quantity > room {
		quantity = room
	}
	line.Quantity = quantity
}

// Remove deletes the line for cardID if present.
func (c *Cart) Remove(cardID string) {
	if _, index := c.Line(cardID); index >= 0 {
		c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.Lines = make([]CartLine, 0)
}

// TotalItems is the summed quantity across all lines. Derived, never cached.
func (c *Cart) TotalItems() int {
	total := 0
	for i := range c.Lines {
		total += c.Lines[i].Quantity
	}
	return total
}

// CanAddMore reports whether at least one more unit fits under the cap.
func (c *Cart) CanAddMore() bool {
	return c.TotalItems() < MaxTotalItems
}
