package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/terra-clan/code-golf/internal/models"
)

// Fetcher loads a leaderboard from the golf API
type Fetcher interface {
	GetLeaderboard(ctx context.Context, challengeID string) (models.PublicLeaderboard, error)
}

// Store persists fetched leaderboards keyed by challenge ID
type Store interface {
	Get(ctx context.Context, challengeID string) (models.PublicLeaderboard, bool, error)
	Set(ctx context.Context, challengeID string, board models.PublicLeaderboard) error
	Delete(ctx context.Context, challengeID string) error
}

// Cache memoizes leaderboards per challenge until they are invalidated
type Cache struct {
	fetcher Fetcher
	store   Store
	group   singleflight.Group

	mu  sync.Mutex
	gen map[string]uint64
}

// NewCache creates a cache in front of fetcher. A nil store uses a fresh MemoryStore.
func NewCache(fetcher Fetcher, store Store) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Cache{
		fetcher: fetcher,
		store:   store,
		gen:     make(map[string]uint64),
	}
}

func (c *Cache) generation(challengeID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[challengeID]
}

// GetOrFetch returns the cached board or fetches, stores and returns it.
// Concurrent misses for the same challenge share a single fetch. The shared
// fetch outlives any one caller, so cancelling ctx only abandons the wait.
func (c *Cache) GetOrFetch(ctx context.Context, challengeID string) (models.PublicLeaderboard, error) {
	board, ok, err := c.store.Get(ctx, challengeID)
	if err != nil {
		slog.Warn("leaderboard store read failed", "challenge", challengeID, "error", err)
	} else if ok {
		return board, nil
	}

	ch := c.group.DoChan(challengeID, func() (interface{}, error) {
		gen := c.generation(challengeID)
		fetchCtx := context.WithoutCancel(ctx)

		board, err := c.fetcher.GetLeaderboard(fetchCtx, challengeID)
		if err != nil {
			return nil, err
		}

		// An invalidation during the fetch means the board may predate it
		if c.generation(challengeID) != gen {
			slog.Debug("not caching leaderboard fetched before invalidation", "challenge", challengeID)
			return board, nil
		}
		if err := c.store.Set(fetchCtx, challengeID, board); err != nil {
			slog.Warn("leaderboard store write failed", "challenge", challengeID, "error", err)
		}
		return board, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to fetch leaderboard for %s: %w", challengeID, res.Err)
		}
		return res.Val.(models.PublicLeaderboard), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to fetch leaderboard for %s: %w", challengeID, ctx.Err())
	}
}

// Invalidate drops the cached board of a challenge
func (c *Cache) Invalidate(ctx context.Context, challengeID string) error {
	c.mu.Lock()
	c.gen[challengeID]++
	c.mu.Unlock()

	c.group.Forget(challengeID)
	if err := c.store.Delete(ctx, challengeID); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard for %s: %w", challengeID, err)
	}
	slog.Debug("leaderboard invalidated", "challenge", challengeID)
	return nil
}
