// Package cart implements the session shopping-cart engine: in-memory cart
// state with quantity consolidation, the 99-item capacity cap, price totals,
// and best-effort persistence to a durable key-value store.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/pricing"
)

// Store is the durable blob store an engine persists to. Load returns
// (nil, nil) when no blob exists for the user.
type Store interface {
	Load(ctx context.Context, userID string) ([]byte, error)
	Save(ctx context.Context, userID string, data []byte) error
}

// Engine owns the cart state for one shopper session. The in-memory state is
// the source of truth for the session; the store is best-effort durability.
// Mutations are accepted before Initialize has run, but nothing is written to
// the store until the persisted state has been loaded and validated once;
// a premature write would clobber a not-yet-loaded cart.
//
// All methods are safe for concurrent use; each operation runs to completion
// under the engine lock.
type Engine struct {
	store  Store
	userID string
	log    logger.Logger

	mu    sync.Mutex
	cart  *entity.Cart
	ready bool
}

func NewEngine(store Store, userID string, log logger.Logger) *Engine {
	return &Engine{
		store:  store,
		userID: userID,
		log:    log,
		cart:   entity.NewCart(),
	}
}

// Initialize restores the persisted cart. Corrupt data is never fatal: an
// unparsable blob or a non-array top level discards the whole stored value,
// and individual elements missing a card id, a card name or a positive
// quantity are dropped. The engine is marked ready regardless of outcome.
func (e *Engine) Initialize(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		return
	}

	raw, err := e.store.Load(ctx, e.userID)
	if err != nil {
		e.log.Warnf("cart engine: failed to load persisted cart for user %s, starting empty: %v", e.userID, err)
		raw = nil
	}
	if len(raw) > 0 {
		e.cart.Lines = decodeLines(raw, e.userID, e.log)
	}
	e.ready = true
}

// decodeLines parses and validates a persisted cart blob, returning only the
// usable lines. Elements are decoded individually so one bad entry does not
// take down its neighbours; only a broken top-level array discards everything.
func decodeLines(raw []byte, userID string, log logger.Logger) []entity.CartLine {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		log.Warnf("cart engine: discarding corrupt cart blob for user %s: %v", userID, err)
		return make([]entity.CartLine, 0)
	}

	lines := make([]entity.CartLine, 0, len(elements))
	dropped := 0
	for _, el := range elements {
		var line entity.CartLine
		if err := json.Unmarshal(el, &line); err != nil || !line.Valid() {
			dropped++
			continue
		}
		lines = append(lines, line)
	}
	if dropped > 0 {
		log.Warnf("cart engine: dropped %d invalid cart line(s) for user %s", dropped, userID)
	}
	return lines
}

// AddItem puts one unit of the card into the cart. At the capacity cap the
// call is a silent no-op; add-to-cart comes from UI actions with no error
// channel, so callers gate the action on CanAddMore instead.
func (e *Engine) AddItem(ctx context.Context, card entity.Card) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cart.Add(card) {
		e.persist(ctx)
	}
}

// UpdateQuantity sets the quantity for a card's line. Zero or negative
// removes the line; a quantity past the cap is clamped, never rejected.
func (e *Engine) UpdateQuantity(ctx context.Context, cardID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart.SetQuantity(cardID, quantity)
	e.persist(ctx)
}

// RemoveItem deletes the line for cardID; unknown ids are a no-op.
func (e *Engine) RemoveItem(ctx context.Context, cardID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart.Remove(cardID)
	e.persist(ctx)
}

// Clear empties the cart. The stored blob is overwritten with an empty
// array, not deleted.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart.Clear()
	e.persist(ctx)
}

// Lines returns a copy of the cart lines in insertion order.
func (e *Engine) Lines() []entity.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	lines := make([]entity.CartLine, len(e.cart.Lines))
	copy(lines, e.cart.Lines)
	return lines
}

// TotalItems is the summed quantity across all lines.
func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.TotalItems()
}

// TotalPrice sums resolved unit price times quantity over all lines.
func (e *Engine) TotalPrice() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	var total float64
	for _, line := range e.cart.Lines {
		total += pricing.LineTotal(line.Card, line.Quantity)
	}
	return total
}

// CanAddMore reports whether the cart is below the capacity cap.
func (e *Engine) CanAddMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.CanAddMore()
}

// persist writes the current lines to the store. Called with the engine lock
// held, after every successful mutation. Write failures are logged and
// swallowed; the session keeps its in-memory state either way.
func (e *Engine) persist(ctx context.Context) {
	if !e.ready {
		return
	}
	data, err := json.Marshal(e.cart.Lines)
	if err != nil {
		e.log.Errorf("cart engine: failed to marshal cart for user %s: %v", e.userID, err)
		return
	}
	if err := e.store.Save(ctx, e.userID, data); err != nil {
		e.log.Warnf("cart engine: failed to persist cart for user %s: %v", e.userID, err)
	}
}
