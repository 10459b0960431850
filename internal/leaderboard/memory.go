package leaderboard

import (
	"context"
	"sync"

	"github.com/terra-clan/code-golf/internal/models"
)

// MemoryStore keeps boards in process memory with no eviction
type MemoryStore struct {
	mu     sync.RWMutex
	boards map[string]models.PublicLeaderboard
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boards: make(map[string]models.PublicLeaderboard),
	}
}

// Get retrieves a board by challenge ID
func (s *MemoryStore) Get(ctx context.Context, challengeID string) (models.PublicLeaderboard, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[challengeID]
	return board, ok, nil
}

// Set stores a board
func (s *MemoryStore) Set(ctx context.Context, challengeID string, board models.PublicLeaderboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[challengeID] = board
	return nil
}

// Delete removes a board
func (s *MemoryStore) Delete(ctx context.Context, challengeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, challengeID)
	return nil
}

// Len returns the number of cached boards
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.boards)
}
