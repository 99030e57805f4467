package storage

import (
	"errors"
	"sync"

	"ewintr.nl/vidqa/model"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("session id is empty")

type session struct {
	exchanges []model.Exchange
	lastUsed  uint64
}

// Memory keeps the conversation log in process memory. Each session holds at
// most maxExchanges exchanges, dropping the oldest first, and when maxSessions
// is reached the least recently used session is evicted. A limit of zero or
// less means no limit.
type Memory struct {
	mu           sync.Mutex
	sessions     map[string]*session
	clock        uint64
	maxExchanges int
	maxSessions  int
}

func NewMemory(maxExchanges, maxSessions int) *Memory {
	return &Memory{
		sessions:     map[string]*session{},
		maxExchanges: maxExchanges,
		maxSessions:  maxSessions,
	}
}

func (m *Memory) Append(sessionID string, exchange model.Exchange) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if exchange.ID == uuid.Nil {
		exchange.ID = uuid.New()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
			m.evict()
		}
		s = &session{}
		m.sessions[sessionID] = s
	}
	m.clock++
	s.lastUsed = m.clock
	s.exchanges = append(s.exchanges, exchange)
	if m.maxExchanges > 0 && len(s.exchanges) > m.maxExchanges {
		s.exchanges = append([]model.Exchange(nil), s.exchanges[len(s.exchanges)-m.maxExchanges:]...)
	}

	return nil
}

// History returns a copy of the exchanges of a session. An unknown session has
// an empty history.
func (m *Memory) History(sessionID string) ([]model.Exchange, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return []model.Exchange{}, nil
	}
	m.clock++
	s.lastUsed = m.clock
	history := make([]model.Exchange, len(s.exchanges))
	copy(history, s.exchanges)

	return history, nil
}

func (m *Memory) evict() {
	var oldestID string
	var oldest uint64
	for id, s := range m.sessions {
		if oldestID == "" || s.lastUsed < oldest {
			oldestID, oldest = id, s.lastUsed
		}
	}
	delete(m.sessions, oldestID)
}
