package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/zosswater/whatsapp-bot/internal/models"
)

// MemoryStore is the process-local session store
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	keys     *KeyedMutex
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		keys:     NewKeyedMutex(),
		now:      o.now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Copies in and out keep readers from ever seeing a half-written session
	return m.sessions[key].Clone(), nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, session *models.Session) error {
	s := session.Clone()
	if s == nil {
		s = &models.Session{}
	}
	s.LastActivity = m.now()

	m.mu.Lock()
	m.sessions[key] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, key string, patch models.SessionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[key]
	if !ok {
		return ErrNotFound
	}

	s := existing.Clone()
	s.Apply(patch)
	s.LastActivity = m.now()
	m.sessions[key] = s
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.sessions, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Sweep(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	cutoff := now.Add(-ttl)

	m.mu.RLock()
	var stale []string
	for key, s := range m.sessions {
		if s.LastActivity.Before(cutoff) {
			stale = append(stale, key)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, key := range stale {
		if m.removeIfStale(key, cutoff) {
			removed++
		}
	}
	return removed, nil
}

// removeIfStale deletes key under the sender's lock if it is still older than cutoff
func (m *MemoryStore) removeIfStale(key string, cutoff time.Time) bool {
	unlock := m.keys.Lock(key)
	defer unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[key]
	if !ok || !s.LastActivity.Before(cutoff) {
		return false
	}
	delete(m.sessions, key)
	return true
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

func (m *MemoryStore) Lock(key string) func() {
	return m.keys.Lock(key)
}
