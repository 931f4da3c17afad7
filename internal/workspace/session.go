package workspace

import (
	"log"
	"sync"
	"time"

	"walletlab/domain/core"
	datasetloader "walletlab/internal/dataset"
)

type sessionEntry struct {
	store    *Store
	lastSeen time.Time
}

// SessionManager maps session ids to workspaces, creating them on first use
type SessionManager struct {
	mu       sync.Mutex
	loader   *datasetloader.Loader
	ttl      time.Duration
	sessions map[core.SessionID]*sessionEntry
	now      func() time.Time
}

// NewSessionManager creates a manager. Sessions idle for longer than ttl are dropped by Sweep; a zero
// ttl keeps them forever.
func NewSessionManager(loader *datasetloader.Loader, ttl time.Duration) *SessionManager {
	return &SessionManager{
		loader:   loader,
		ttl:      ttl,
		sessions: make(map[core.SessionID]*sessionEntry),
		now:      time.Now,
	}
}

// Get returns the workspace of a session, creating an empty one if needed
func (m *SessionManager) Get(id core.SessionID) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		entry = &sessionEntry{store: NewStore(m.loader)}
		m.sessions[id] = entry
	}
	entry.lastSeen = m.now()
	return entry.store
}

// Reset discards the workspace of a session
func (m *SessionManager) Reset(id core.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle longer than the ttl and returns how many were removed
func (m *SessionManager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	removed := 0
	for id, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[SessionManager] Expired %d idle workspaces", removed)
	}
	return removed
}

// StartSweeper runs Sweep every interval until stop is closed
func (m *SessionManager) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-stop:
				return
			}
		}
	}()
}
