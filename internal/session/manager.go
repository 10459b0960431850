package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config holds what every new session is built from
type Config struct {
	API      API
	Renderer Renderer
	// NewBoards returns the leaderboard source of a new session
	NewBoards func() Boards
	FileLimit int64
}

// Manager tracks the live sessions of the server
type Manager struct {
	cfg      Config
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a new session manager
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Open registers a new session delivering frames to sink
func (m *Manager) Open(sink Sink) *Session {
	s := New(Options{
		ID:        uuid.NewString(),
		API:       m.cfg.API,
		Boards:    m.cfg.NewBoards(),
		Renderer:  m.cfg.Renderer,
		Sink:      sink,
		FileLimit: m.cfg.FileLimit,
	})

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	slog.Info("session opened", "session_id", s.ID())
	return s
}

// Remove closes and forgets a session
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
		slog.Info("session closed", "session_id", id)
	}
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Idle returns the sessions with no user action for longer than timeout
func (m *Manager) Idle(timeout time.Duration) []*Session {
	cutoff := time.Now().Add(-timeout)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var idle []*Session
	for _, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
		}
	}
	return idle
}

// Close closes every session and waits for their loops to exit
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	for _, s := range sessions {
		select {
		case <-s.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
