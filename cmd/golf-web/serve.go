package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/code-golf/internal/cleanup"
	"github.com/terra-clan/code-golf/internal/config"
	"github.com/terra-clan/code-golf/internal/leaderboard"
	"github.com/terra-clan/code-golf/internal/render"
	"github.com/terra-clan/code-golf/internal/session"
	"github.com/terra-clan/code-golf/internal/site"
	"github.com/terra-clan/code-golf/internal/web"
	"github.com/terra-clan/code-golf/pkg/client"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page and drive its sessions over websockets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return serve(cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides SERVER_PORT)")
	return cmd
}

func serve(cfg *config.Config) error {
	slog.Info("starting golf-web",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"api", cfg.API.URL,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	api := client.NewClient(cfg.API.URL, client.WithTimeout(cfg.API.Timeout))
	checks := []web.Check{{Name: "golf api", Ping: api.Health}}

	// Leaderboards are shared through Redis when configured, else kept per session
	newBoards := func() session.Boards {
		return leaderboard.NewCache(api, nil)
	}
	var redisStore *leaderboard.RedisStore
	if cfg.Redis.Address != "" {
		store, err := leaderboard.NewRedisStore(initCtx, leaderboard.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return err
		}
		redisStore = store
		shared := leaderboard.NewCache(api, store)
		newBoards = func() session.Boards { return shared }
		checks = append(checks, web.Check{Name: "redis", Ping: store.HealthCheck})
		slog.Info("redis connected successfully", "address", cfg.Redis.Address)
	}

	pages, err := buildPages(initCtx, cfg)
	if err != nil {
		slog.Warn("failed to build page with fonts, building without", "error", err)
		manifest, merr := site.LoadManifest(cfg.Site.Manifest)
		if merr != nil {
			return merr
		}
		if pages, err = site.Build(initCtx, manifest, nil); err != nil {
			return err
		}
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}

	sessions := session.NewManager(session.Config{
		API:       api,
		Renderer:  renderer,
		NewBoards: newBoards,
		FileLimit: cfg.Session.FileLimit,
	})

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start cleanup worker
	cleaner := cleanup.NewCleaner(sessions, cfg.Cleanup.Interval, cfg.Session.IdleTimeout)
	cleaner.Start(ctx)

	// An uploaded file travels inside one JSON message
	readLimit := 2*cfg.Session.FileLimit + 4096
	server := web.NewServer(cfg.Server, sessions, pages, readLimit, checks...)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
		return err
	}

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Hijacked websockets are not tracked by Shutdown
	if err := sessions.Close(shutdownCtx); err != nil {
		slog.Error("session shutdown error", "error", err)
	}

	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	slog.Info("golf-web stopped")
	return nil
}
