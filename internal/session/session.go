// Package session holds the authenticated user identity for the life of
// a login. It replaces the original client's ambient globals with an
// explicit object handed to every role-scoped controller.
package session

import (
	"sync"

	"khidma/internal/domain"
	"khidma/internal/events"
)

// Session is the authenticated identity: set once at login, read by
// every controller, cleared at logout.
type Session struct {
	UserID string
	Role   string
}

// Manager guards the current session. Writes happen only from the login
// and logout paths; concurrent readers are safe.
type Manager struct {
	mu       sync.RWMutex
	current  Session
	active   bool
	eventBus domain.EventPublisher
}

func NewManager(eventBus domain.EventPublisher) *Manager {
	return &Manager{eventBus: eventBus}
}

// Establish installs the session after a successful login.
func (m *Manager) Establish(s Session) {
	m.mu.Lock()
	m.current = s
	m.active = true
	m.mu.Unlock()

	if m.eventBus != nil {
		_ = m.eventBus.PublishJSON(events.EventSessionEstablished, events.SessionEventPayload{
			UserID: s.UserID,
			Role:   s.Role,
		})
	}
}

// Current returns the session and whether one is established.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.active
}

// Clear drops the session at logout.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.current = Session{}
	m.active = false
	m.mu.Unlock()

	if m.eventBus != nil {
		_ = m.eventBus.PublishJSON(events.EventSessionCleared, events.SessionEventPayload{})
	}
}
