package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/lesson-scheduler/internal/config"
	"github.com/iliyamo/lesson-scheduler/internal/database"
	"github.com/iliyamo/lesson-scheduler/internal/handler"
	"github.com/iliyamo/lesson-scheduler/internal/logger"
	"github.com/iliyamo/lesson-scheduler/internal/middleware"
	"github.com/iliyamo/lesson-scheduler/internal/repository"
	"github.com/iliyamo/lesson-scheduler/internal/router"
	"github.com/iliyamo/lesson-scheduler/internal/schedule"
	"github.com/iliyamo/lesson-scheduler/internal/service"
	"github.com/iliyamo/lesson-scheduler/internal/store"
)

func main() {
	cfg, err := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, rdb, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	repos := repository.New(kv)
	catalog := schedule.NewCatalog(repos, log)
	if cfg.SeedFile != "" {
		seed, err := config.LoadSeed(cfg.SeedFile)
		if err != nil {
			log.Fatal("load seed", zap.Error(err))
		}
		if err := catalog.Seed(ctx, seed.Teachers, seed.StudentModels(), seed.TimeSlots); err != nil {
			log.Fatal("apply seed", zap.Error(err))
		}
	}

	var events schedule.Publisher = service.Discard{}
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.AMQPURL, log)
	}
	scheduler := schedule.New(repos, log,
		schedule.WithPublisher(events),
		schedule.WithDefaultWeeks(cfg.DefaultWeeks))

	var limiter echo.MiddlewareFunc
	if rdb != nil {
		limiter = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	}

	e := echo.New()
	e.HideBanner = true
	router.Use(e, log, time.Duration(cfg.RequestTimeout)*time.Second)
	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Deps{
		Lessons:   handler.NewLessonHandler(scheduler, log),
		Catalog:   handler.NewCatalogHandler(catalog, log),
		JWTSecret: cfg.JWTSecret,
		Limiter:   limiter,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

// openStore picks the key-value backend.  The Redis client is returned
// separately so the rate limiter can share it.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.KV, *redis.Client, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("memory store selected, data is lost on restart")
		return store.NewMemory(), nil, func() {}, nil
	case config.DriverMySQL:
		db, err := database.Open(ctx, cfg.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return store.NewMySQL(db, cfg.StorePrefix, cfg.StoreRetries), nil, func() { _ = db.Close() }, nil
	default:
		rdb, err := config.NewRedisClient(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		return store.NewRedis(rdb, cfg.StorePrefix, cfg.StoreRetries), rdb, func() { _ = rdb.Close() }, nil
	}
}
