package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/code-golf/internal/leaderboard"
)

func newFlushCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush-cache",
		Short: "Drop every leaderboard cached in Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Redis.Address == "" {
				return fmt.Errorf("REDIS_ADDRESS is not set")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			store, err := leaderboard.NewRedisStore(ctx, leaderboard.RedisConfig{
				Address:  cfg.Redis.Address,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				TTL:      cfg.Redis.TTL,
			})
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Flush(ctx)
			if err != nil {
				return err
			}

			slog.Info("leaderboard cache flushed", "keys", n)
			return nil
		},
	}
}
