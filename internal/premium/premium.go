package premium

import "sync"

// Manager tracks the premium entitlement observed by the engine's quota
// checks. The purchase flow itself is an external collaborator; only the
// resulting flag matters here.
type Manager struct {
	mu        sync.RWMutex
	isPremium bool
}

func NewManager(isPremium bool) *Manager {
	return &Manager{isPremium: isPremium}
}

func (m *Manager) IsPremium() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isPremium
}

// SetPremium records the outcome of an entitlement verification.
func (m *Manager) SetPremium(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isPremium = v
}
