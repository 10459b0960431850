package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/code-golf/internal/models"
)

// KeyPrefix namespaces leaderboard keys in Redis
const KeyPrefix = "golf:leaderboard:"

// RedisStore shares boards between sessions through Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration // 0 keeps boards until invalidated
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("redis leaderboard store connected", "address", cfg.Address, "db", cfg.DB, "ttl", cfg.TTL)

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

func key(challengeID string) string {
	return KeyPrefix + challengeID
}

// Get retrieves a board by challenge ID
func (s *RedisStore) Get(ctx context.Context, challengeID string) (models.PublicLeaderboard, bool, error) {
	data, err := s.client.Get(ctx, key(challengeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	var board models.PublicLeaderboard
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached leaderboard: %w", err)
	}
	return board, true, nil
}

// Set stores a board, expiring it after the configured TTL
func (s *RedisStore) Set(ctx context.Context, challengeID string, board models.PublicLeaderboard) error {
	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}
	if err := s.client.Set(ctx, key(challengeID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write leaderboard: %w", err)
	}
	return nil
}

// Delete removes a board
func (s *RedisStore) Delete(ctx context.Context, challengeID string) error {
	return s.client.Del(ctx, key(challengeID)).Err()
}

// Flush removes every leaderboard key
func (s *RedisStore) Flush(ctx context.Context) (int, error) {
	var cursor uint64
	var deleted int

	for {
		keys, next, err := s.client.Scan(ctx, cursor, KeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("failed to delete some keys", "error", err)
			} else {
				deleted += len(keys)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

// HealthCheck verifies Redis connectivity
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
