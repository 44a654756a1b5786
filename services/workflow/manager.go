package workflow

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SessionManager hands out session-scoped engines. Each patient session gets
// its own independent Engine; nothing here is a process-wide singleton beyond
// the registry itself. Snapshots go through the Store (when configured) so a
// session can be resumed after a restart.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Engine
	deps     Deps
	store    *Store
}

func NewSessionManager(deps Deps, store *Store) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Engine),
		deps:     deps,
		store:    store,
	}
}

// StartSession creates a fresh workflow session.
func (m *SessionManager) StartSession(ctx context.Context) (*Engine, error) {
	engine := NewEngine(uuid.New().String(), m.deps)
	m.mu.Lock()
	m.sessions[engine.SessionID()] = engine
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Save(ctx, engine); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// GetSession returns the live engine, falling back to the snapshot store
// when the process has restarted since the session began.
func (m *SessionManager) GetSession(ctx context.Context, sessionID string) (*Engine, error) {
	m.mu.Lock()
	engine, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if ok {
		return engine, nil
	}
	if m.store == nil {
		return nil, ErrSessionNotFound
	}

	engine, err := m.store.Load(ctx, sessionID, m.deps)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[sessionID] = engine
	m.mu.Unlock()
	return engine, nil
}

// Checkpoint persists the session's current snapshot.
func (m *SessionManager) Checkpoint(ctx context.Context, engine *Engine) error {
	if m.store == nil {
		return nil
	}
	return m.store.Save(ctx, engine)
}

// EndSession drops the session from the registry and the store.
func (m *SessionManager) EndSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if m.store == nil {
		return nil
	}
	return m.store.Delete(ctx, sessionID)
}
