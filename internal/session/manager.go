package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/service"
)

// Manager is an in-memory registry of sessions keyed by UUID
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	gen      service.RecipeGenerator
	favs     FavoritesStore
	log      *zap.Logger
	now      func() time.Time
}

// NewManager creates an empty registry
func NewManager(gen service.RecipeGenerator, favs FavoritesStore, log *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		gen:      gen,
		favs:     favs,
		log:      log,
		now:      time.Now,
	}
}

// Create registers a new session with default state
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.gen, m.favs, m.log, m.now)

	m.mu.Lock()
	m.sessions[s.id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.log.Debug("session created", zap.String("session_id", s.id), zap.Int("sessions", count))
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete closes and forgets a session. It reports whether the id was known.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.close()
		m.log.Debug("session deleted", zap.String("session_id", id))
	}
	return ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep deletes sessions idle for longer than maxIdle and returns how many
// were removed
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		if s.lastActive().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.Delete(id)
	}
	if len(expired) > 0 {
		m.log.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(maxIdle)
		}
	}
}
