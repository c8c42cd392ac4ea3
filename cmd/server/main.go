package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quickpick/internal/cache"
	"quickpick/internal/config"
	"quickpick/internal/decision"
	"quickpick/internal/fallback"
	"quickpick/internal/generator"
	"quickpick/internal/normalize"
	"quickpick/internal/service"
	"quickpick/internal/transport/rest"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	logger.Info("starting quickpick",
		zap.String("model", cfg.AI.Model),
		zap.String("fallbackModel", cfg.AI.FallbackModel),
		zap.Bool("generatorEnabled", cfg.AI.IsEnabled()))
	if !cfg.AI.IsEnabled() {
		logger.Warn("AI_BUILDER_TOKEN not set, every response will be synthesized")
	}

	ctx := context.Background()

	// Session store: Redis when configured and reachable, process memory otherwise
	var store cache.SessionStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Fatal("failed to ping Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
		store = cache.NewSessionStore(rdb, cfg.SessionTTL)
	} else {
		logger.Info("REDIS_URI not set, keeping sessions in memory")
		store = cache.NewMemoryStore(cfg.SessionTTL)
	}

	params := decision.DefaultParams()
	fb := fallback.NewSynthesizer()
	gen := generator.NewClient(cfg.AI, logger)
	norm := normalize.New(fb, params, logger)

	quickpickSvc := service.NewQuickPickService(gen, norm, fb, params, logger)
	sessionSvc := service.NewSessionService(quickpickSvc, store, fb, params, logger)

	router := rest.NewRouter(&rest.Container{
		QuickPickService: quickpickSvc,
		SessionService:   sessionSvc,
		Logger:           logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen and serve", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
