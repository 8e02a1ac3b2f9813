package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/platform/logger"
)

// fakeStore keeps blobs in memory and counts writes so tests can assert on
// persistence behaviour, including the no-write-before-initialize guard.
type fakeStore struct {
	blobs     map[string][]byte
	saveCount int
	loadErr   error
	saveErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: make(map[string][]byte)}
}

func (s *fakeStore) Load(ctx context.Context, userID string) ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.blobs[userID], nil
}

func (s *fakeStore) Save(ctx context.Context, userID string, data []byte) error {
	s.saveCount++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.blobs[userID] = data
	return nil
}

func cardFixture(id string, usd string) entity.Card {
	return entity.Card{ID: id, Name: "Card " + id, Prices: entity.CardPrices{USD: usd}}
}

func TestEngine_RoundTrip(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)
	engine.AddItem(ctx, cardFixture("c1", "2.00"))
	engine.AddItem(ctx, cardFixture("c1", "2.00"))
	engine.AddItem(ctx, cardFixture("c2", "5.00"))

	// A fresh engine over the same store restores the identical cart.
	restored := NewEngine(store, "user1", logger.NoOp{})
	restored.Initialize(ctx)

	lines := restored.Lines()
	assert.Len(t, lines, 2)
	assert.Equal(t, "c1", lines[0].Card.ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "c2", lines[1].Card.ID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, 3, restored.TotalItems())
	assert.Equal(t, 9.0, restored.TotalPrice())
}

func TestEngine_PersistedLayout(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)
	engine.AddItem(ctx, cardFixture("c1", "2.00"))

	var decoded []map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(store.blobs["user1"], &decoded))
	assert.Len(t, decoded, 1)
	assert.Contains(t, decoded[0], "item")
	assert.Contains(t, decoded[0], "quantity")
}

func TestEngine_NoWriteBeforeInitialize(t *testing.T) {
	store := newFakeStore()
	store.blobs["user1"] = []byte(`[{"item":{"id":"c9","name":"Stored"},"quantity":4}]`)
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.AddItem(ctx, cardFixture("c1", "1.00"))

	// The mutation is held in memory but nothing may touch the store until
	// the persisted cart has been loaded.
	assert.Equal(t, 0, store.saveCount)
	assert.Equal(t, 1, engine.TotalItems())

	engine.Initialize(ctx)
	assert.Equal(t, 4, engine.TotalItems())
	assert.Equal(t, "c9", engine.Lines()[0].Card.ID)
}

func TestEngine_Initialize_Idempotent(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)
	engine.AddItem(ctx, cardFixture("c1", "1.00"))

	engine.Initialize(ctx)

	assert.Equal(t, 1, engine.TotalItems())
}

func TestEngine_Initialize_CorruptBlobStartsEmpty(t *testing.T) {
	store := newFakeStore()
	store.blobs["user1"] = []byte(`{not json at all`)
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)

	assert.Empty(t, engine.Lines())
	assert.Equal(t, 0, engine.TotalItems())
}

func TestEngine_Initialize_NonArrayTopLevelStartsEmpty(t *testing.T) {
	store := newFakeStore()
	store.blobs["user1"] = []byte(`{"item":{"id":"c1","name":"Card"},"quantity":1}`)
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)

	assert.Empty(t, engine.Lines())
}

func TestEngine_Initialize_DropsInvalidElements(t *testing.T) {
	store := newFakeStore()
	store.blobs["user1"] = []byte(`[
		{"item":{"id":"c1","name":"Good"},"quantity":2},
		{"item":{"id":"","name":"No ID"},"quantity":1},
		{"item":{"id":"c3","name":"Zero"},"quantity":0},
		"not an object",
		{"item":{"id":"c5","name":"Also good"},"quantity":1}
	]`)
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)

	lines := engine.Lines()
	assert.Len(t, lines, 2)
	assert.Equal(t, "c1", lines[0].Card.ID)
	assert.Equal(t, "c5", lines[1].Card.ID)
	assert.Equal(t, 3, engine.TotalItems())
}

func TestEngine_Initialize_LoadErrorStartsEmpty(t *testing.T) {
	store := newFakeStore()
	store.loadErr = errors.New("store unavailable")
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)
	engine.AddItem(ctx, cardFixture("c1", "1.00"))

	assert.Equal(t, 1, engine.TotalItems())
	assert.Equal(t, 1, store.saveCount)
}

func TestEngine_SaveFailureKeepsSessionState(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("write refused")
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)
	engine.AddItem(ctx, cardFixture("c1", "1.00"))
	engine.AddItem(ctx, cardFixture("c1", "1.00"))

	assert.Equal(t, 2, engine.TotalItems())
	assert.Equal(t, 2, store.saveCount)
}

func TestEngine_AddItem_NoPersistAtCapacity(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)
	engine.UpdateQuantity(ctx, "none", 1) // unknown id, persists current (empty) state
	savesBefore := store.saveCount

	engine.AddItem(ctx, cardFixture("c1", "1.00"))
	for i := 1; i < entity.MaxTotalItems; i++ {
		engine.AddItem(ctx, cardFixture("c1", "1.00"))
	}
	assert.Equal(t, entity.MaxTotalItems, engine.TotalItems())
	assert.False(t, engine.CanAddMore())
	savesAtCap := store.saveCount
	assert.Equal(t, savesBefore+entity.MaxTotalItems, savesAtCap)

	engine.AddItem(ctx, cardFixture("c2", "1.00"))

	assert.Equal(t, entity.MaxTotalItems, engine.TotalItems())
	assert.Equal(t, savesAtCap, store.saveCount)
}

func TestEngine_UpdateQuantity_ClampAndRemove(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)
	engine.AddItem(ctx, cardFixture("c1", "1.00"))
	engine.AddItem(ctx, cardFixture("c2", "1.00"))

	engine.UpdateQuantity(ctx, "c1", 500)
	assert.Equal(t, entity.MaxTotalItems, engine.TotalItems())

	engine.UpdateQuantity(ctx, "c1", 0)
	lines := engine.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, "c2", lines[0].Card.ID)
}

func TestEngine_Clear_PersistsEmptyArray(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	engine := NewEngine(store, "user1", logger.NoOp{})
	engine.Initialize(ctx)
	engine.AddItem(ctx, cardFixture("c1", "1.00"))

	engine.Clear(ctx)

	assert.Equal(t, "[]", string(store.blobs["user1"]))
	assert.Empty(t, engine.Lines())
}

func TestSessionManager_ReusesEnginePerUser(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	sessions := NewSessionManager(store, logger.NoOp{})
	first := sessions.Engine(ctx, "user1")
	second := sessions.Engine(ctx, "user1")
	other := sessions.Engine(ctx, "user2")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)

	first.AddItem(ctx, cardFixture("c1", "1.00"))
	assert.Equal(t, 1, second.TotalItems())
	assert.Equal(t, 0, other.TotalItems())
}
