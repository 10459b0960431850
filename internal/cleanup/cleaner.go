package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/terra-clan/code-golf/internal/session"
)

// Sessions is what the cleaner needs from the session manager
type Sessions interface {
	Idle(timeout time.Duration) []*session.Session
	Remove(id string)
}

// Cleaner handles periodic removal of idle sessions
type Cleaner struct {
	sessions    Sessions
	interval    time.Duration
	idleTimeout time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(sessions Sessions, interval, idleTimeout time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}

	return &Cleaner{
		sessions:    sessions,
		interval:    interval,
		idleTimeout: idleTimeout,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval, "idle_timeout", c.idleTimeout)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup closes sessions whose page has gone quiet
func (c *Cleaner) cleanup() int {
	slog.Debug("running cleanup cycle")

	idle := c.sessions.Idle(c.idleTimeout)
	if len(idle) == 0 {
		slog.Debug("no idle sessions found")
		return 0
	}

	slog.Info("found idle sessions", "count", len(idle))

	for _, s := range idle {
		slog.Info("closing idle session",
			"session_id", s.ID(),
			"last_active", s.LastActive(),
		)
		c.sessions.Remove(s.ID())
	}

	return len(idle)
}
