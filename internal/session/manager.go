package session

import "sync"

// Manager владеет сессиями всех пользователей. Не больше одной сессии на
// пользователя; Get для незнакомого пользователя возвращает Idle.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]Session)}
}

func (m *Manager) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[userID]
}

func (m *Manager) Set(userID int64, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.State == StateIdle {
		delete(m.sessions, userID)
		return
	}
	m.sessions[userID] = s
}

func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
