package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yuriataaide/dailydiet/internal"
	"github.com/yuriataaide/dailydiet/internal/api"
	"github.com/yuriataaide/dailydiet/internal/config"
	"github.com/yuriataaide/dailydiet/internal/storage"
)

const migrationFile = "db/migrations/001_init.sql"

func main() {
	cfg := config.Load()

	logger, flush := newLogger(cfg)
	defer flush()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		userRepo storage.UserRepository
		mealRepo storage.MealRepository
		closer   interface{ Close() error }
	)
	switch cfg.DBType {
	case "postgres":
		pg, err := storage.NewPostgresStorage(cfg.DBDSN, logger)
		if err != nil {
			logger.Fatalf("failed to init postgres storage: %v", err)
		}
		if script, err := os.ReadFile(migrationFile); err != nil {
			logger.Warnf("migration file not found, skipping: %v", err)
		} else if err := pg.ApplyMigration(context.Background(), string(script)); err != nil {
			logger.Warnf("migration warning: %v", err)
		} else {
			logger.Info("migration applied")
		}
		userRepo, mealRepo, closer = pg, pg, pg
	default:
		if dir := filepath.Dir(cfg.FileMeals); dir != "." {
			_ = os.MkdirAll(dir, 0755)
		}
		mem, err := storage.NewMemoryStorage(cfg.FileUsers, cfg.FileMeals, logger)
		if err != nil {
			logger.Fatalf("failed to init memory storage: %v", err)
		}
		userRepo, mealRepo, closer = mem, mem, mem
	}

	rl := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := api.NewRouter(userRepo, mealRepo, logger, rl)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Infof("server running on %s (storage=%s)", cfg.HTTPAddr, cfg.DBType)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if err := closer.Close(); err != nil {
		logger.Errorf("storage close: %v", err)
	}
}

func newLogger(cfg *config.Config) (internal.Logger, func()) {
	zcfg := zap.NewProductionConfig()
	if cfg.Env == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zl, err := zcfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return internal.NewZapLogger(zl.Sugar()), func() { _ = zl.Sync() }
}
