package cart

import (
	"context"
	"sync"

	"github.com/cardtienda/backend/internal/platform/logger"
)

// SessionManager hands out one cart engine per user, constructing and
// initializing engines lazily on first use. Two sessions for the same user
// against the same store are not coordinated beyond last-write-wins; a
// session observes another session's writes only when its engine is built.
type SessionManager struct {
	store Store
	log   logger.Logger

	mu      sync.Mutex
	engines map[string]*Engine
}

func NewSessionManager(store Store, log logger.Logger) *SessionManager {
	return &SessionManager{
		store:   store,
		log:     log,
		engines: make(map[string]*Engine),
	}
}

// Engine returns the cart engine for the user, initialized and ready.
func (m *SessionManager) Engine(ctx context.Context, userID string) *Engine {
	m.mu.Lock()
	engine, ok := m.engines[userID]
	if !ok {
		engine = NewEngine(m.store, userID, m.log)
		m.engines[userID] = engine
	}
	m.mu.Unlock()

	// Initialize outside the manager lock; it is idempotent and only the
	// first call per engine does I/O.
	engine.Initialize(ctx)
	return engine
}
