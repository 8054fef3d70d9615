package storage

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"market_assistant/internal/metrics"
	"market_assistant/src/conversation"
	"market_assistant/src/model"
)

// Session is one chat surface and the memory it owns
type Session struct {
	ID        string
	Memory    *conversation.Memory
	CreatedAt time.Time
	UpdatedAt time.Time

	// turn serializes whole user/assistant exchanges within the session
	turn sync.Mutex
}

// LockTurn blocks until no other exchange is in flight for this session.
// The returned func releases it.
func (s *Session) LockTurn() func() {
	s.turn.Lock()
	return s.turn.Unlock
}

// SessionManager keeps per-session conversation memory in process.
// Sessions idle for longer than the TTL are cleared and forgotten.
type SessionManager struct {
	mu              sync.Mutex
	sessions        map[string]*Session
	ttl             time.Duration
	maxHistoryTurns int
	now             func() time.Time
}

// NewSessionManager creates a session manager. A zero ttl never expires sessions.
func NewSessionManager(ttl time.Duration, maxHistoryTurns int) *SessionManager {
	return &SessionManager{
		sessions:        make(map[string]*Session),
		ttl:             ttl,
		maxHistoryTurns: maxHistoryTurns,
		now:             time.Now,
	}
}

func (m *SessionManager) expired(session *Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(session.UpdatedAt) > m.ttl
}

func (m *SessionManager) dropLocked(id string) {
	session, ok := m.sessions[id]
	if !ok {
		return
	}
	session.Memory.Clear()
	delete(m.sessions, id)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
}

// GetOrCreate returns the live session for id, starting a fresh one when it
// is unknown or expired. Every call counts as activity.
func (m *SessionManager) GetOrCreate(id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("session ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if session, ok := m.sessions[id]; ok {
		if !m.expired(session, now) {
			session.UpdatedAt = now
			return session, nil
		}
		m.dropLocked(id)
	}

	session := &Session{
		ID:        id,
		Memory:    conversation.NewMemory(m.maxHistoryTurns),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sessions[id] = session
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return session, nil
}

// Get returns an existing session or model.ErrSessionNotFound
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	if m.expired(session, m.now()) {
		m.dropLocked(id)
		return nil, fmt.Errorf("%w: %s expired", model.ErrSessionNotFound, id)
	}
	return session, nil
}

// Delete clears the session memory and forgets the session
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	m.dropLocked(id)
	return nil
}

// Sweep drops every expired session and reports how many were removed
func (m *SessionManager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, session := range m.sessions {
		if m.expired(session, now) {
			m.dropLocked(id)
			removed++
		}
	}
	return removed
}

// Count returns the number of tracked sessions
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
