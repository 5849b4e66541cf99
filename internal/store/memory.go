package store

import "sync"

// MemoryStore keeps per-session OAuth bookkeeping: the CSRF state issued
// before redirecting to GitHub and the username resolved after the exchange.
// Review runs themselves are stateless and never touch this store.
type MemoryStore struct {
	mu sync.RWMutex
	// OAuth state per session (CSRF protection) and the reverse mapping
	// used to resolve callbacks.
	oauthStateBySession map[string]string
	sessionByOAuthState map[string]string
	usernameBySession   map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		oauthStateBySession: make(map[string]string),
		sessionByOAuthState: make(map[string]string),
		usernameBySession:   make(map[string]string),
	}
}

func (m *MemoryStore) SetOAuthState(sessionID, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oauthStateBySession[sessionID] = state
	m.sessionByOAuthState[state] = sessionID
}

func (m *MemoryStore) GetOAuthState(sessionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.oauthStateBySession[sessionID]
}

func (m *MemoryStore) ClearOAuthState(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.oauthStateBySession[sessionID]; ok {
		delete(m.sessionByOAuthState, st)
		delete(m.oauthStateBySession, sessionID)
	}
}

func (m *MemoryStore) GetSessionByOAuthState(state string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionByOAuthState[state]
}

func (m *MemoryStore) SetUsername(sessionID, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usernameBySession[sessionID] = username
}

func (m *MemoryStore) GetUsername(sessionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usernameBySession[sessionID]
}

// ClearSession drops everything held for a session.
func (m *MemoryStore) ClearSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.oauthStateBySession[sessionID]; ok {
		delete(m.sessionByOAuthState, st)
		delete(m.oauthStateBySession, sessionID)
	}
	delete(m.usernameBySession, sessionID)
}
