package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Entries idle longer than
// the TTL are treated as missing. They are dropped on access, and Save
// sweeps every expired entry at most once per TTL.
type MemoryStore struct {
	sessions  map[string][]byte
	touched   map[string]time.Time
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	mu        sync.RWMutex
}

// NewMemoryStore creates an in-memory store. A ttl of zero never expires.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
		touched:  make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a copy of the stored session so callers cannot mutate shared
// state without Save.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	touched := m.touched[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if m.ttl > 0 && m.now().Sub(touched) > m.ttl {
		m.mu.Lock()
		delete(m.sessions, id)
		delete(m.touched, id)
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	now := m.now()
	s.UpdatedAt = now
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", s.ID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked(now)
	m.sessions[s.ID] = data
	m.touched[s.ID] = now
	return nil
}

// sweepLocked drops expired entries. m.mu must be held for writing.
func (m *MemoryStore) sweepLocked(now time.Time) {
	if m.ttl <= 0 || (!m.lastSweep.IsZero() && now.Sub(m.lastSweep) < m.ttl) {
		return
	}
	m.lastSweep = now
	for id, touched := range m.touched {
		if now.Sub(touched) > m.ttl {
			delete(m.sessions, id)
			delete(m.touched, id)
		}
	}
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.touched, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
