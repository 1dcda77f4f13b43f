package commands

import (
	"sync"
	"time"
)

// sessionTTL bounds how long a sender's last animal is remembered.
const sessionTTL = 30 * time.Minute

// Session is what we remember about a sender between messages.
type Session struct {
	LastTag   string
	UpdatedAt time.Time
}

// SessionManager handles per-sender conversation state.
type SessionManager struct {
	sessions map[string]Session
	mu       sync.RWMutex
	now      func() time.Time
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// LastTag returns the last animal tag the sender asked about, if still fresh.
func (sm *SessionManager) LastTag(sender string) (string, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[sender]
	if !ok || sm.now().Sub(s.UpdatedAt) > sessionTTL {
		return "", false
	}
	return s.LastTag, true
}

// Remember records the tag as the sender's current animal and drops expired
// sessions.
func (sm *SessionManager) Remember(sender, tag string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	now := sm.now()
	for k, s := range sm.sessions {
		if now.Sub(s.UpdatedAt) > sessionTTL {
			delete(sm.sessions, k)
		}
	}
	sm.sessions[sender] = Session{LastTag: tag, UpdatedAt: now}
}

