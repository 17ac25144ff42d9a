package game

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Sessions lazily loads and caches one Session per player. Every intent
// reloads the stored profile, so an evicted session loses only its active
// round and pending ad.
type Sessions struct {
	deps     Deps
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessions(deps Deps) *Sessions {
	return &Sessions{
		deps:     deps.withDefaults(),
		sessions: make(map[string]*Session),
	}
}

func (m *Sessions) Get(ctx context.Context, playerID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[playerID]
	m.mu.RUnlock()
	if ok {
		m.touch(s)
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock.
	if s, ok := m.sessions[playerID]; ok {
		m.touch(s)
		return s, nil
	}

	p := NewProfile(m.deps.Rules)
	if err := m.deps.Store.LoadProfile(ctx, playerID, &p); err != nil {
		return nil, fmt.Errorf("loading profile %q: %w", playerID, err)
	}
	p.Normalize(m.deps.Rules)

	s = NewSession(playerID, p, m.deps)
	m.touch(s)
	m.sessions[playerID] = s
	return s, nil
}

func (m *Sessions) touch(s *Session) {
	s.seen.Store(m.deps.Calendar.now().UnixNano())
}

// Len returns the number of cached sessions.
func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions not looked up for longer than idle and returns how
// many were dropped.
func (m *Sessions) Sweep(idle time.Duration) int {
	cutoff := m.deps.Calendar.now().Add(-idle).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.seen.Load() < cutoff {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Sessions) Run(ctx context.Context, every, idle time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := m.Sweep(idle); n > 0 {
				m.deps.Logger.Debug("evicted idle sessions", "count", n, "remaining", m.Len())
			}
		}
	}
}
