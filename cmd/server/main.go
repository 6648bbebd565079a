package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyroom/internal/clock"
	"studyroom/internal/config"
	"studyroom/internal/httpserver"
	"studyroom/internal/premium"
	"studyroom/internal/security"
	"studyroom/internal/service"
	"studyroom/internal/store"
	"studyroom/internal/store/memory"
	redisstore "studyroom/internal/store/redis"
	"studyroom/internal/store/sqlite"
	"studyroom/internal/ws"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	entitlements := premium.NewManager(cfg.Premium)
	hub := ws.NewHub(logger)

	engine := service.NewEngine(st, clock.System{}, logger, hub, entitlements, service.Limits{
		RoomCreationLimit: cfg.RoomCreationLimit,
		FriendLimit:       cfg.FriendLimit,
	})
	if err := engine.Load(context.Background()); err != nil {
		logger.Error("Failed to load engine state", "error", err)
		os.Exit(1)
	}

	tokens := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	hasher := security.NewPassphraseHasher(0)

	router := httpserver.NewRouter(cfg, engine, hub, st, tokens, hasher, entitlements, logger)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "addr", cfg.HTTPAddr(), "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "sqlite":
		kv, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { kv.Close() }, nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		kv, err := redisstore.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { kv.Close() }, nil
	default:
		return memory.New(), func() {}, nil
	}
}
