// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/app"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/redis"
	httpserver "github.com/your-org/bookstore-backend/internal/interfaces/http"
	"github.com/your-org/bookstore-backend/internal/pkg/email"
	"github.com/your-org/bookstore-backend/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("starting")

	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	store, err := openStore(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer store.Shutdown()

	infra := app.Infrastructure{
		Store:  store,
		Sender: email.NewEmailService(cfg.Email, log),
	}

	// Redis is optional: without it the product cache and the rate limiter
	// are off and idempotency keys stay in process.
	if cfg.Redis.Host != "" {
		redisClient, err := redis.NewConnection(cfg, log)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, continuing without cache and rate limiting")
		} else {
			defer redisClient.Close()
			infra.Cache = redisClient
			infra.Idempotency = redis.NewIdempotencyStore(redisClient)
			infra.Limiter = redis.NewRateLimiter(redisClient, time.Minute)
			infra.Checks = map[string]httpserver.HealthCheck{"redis": redisClient.Health}
		}
	}

	application := app.New(cfg, log, infra)

	go func() {
		if err := application.Server.Start(); err != nil {
			log.WithError(err).Fatal("failed to start HTTP server")
		}
	}()

	log.Info("all systems operational")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := application.Server.Stop(ctx); err != nil {
		log.WithError(err).Error("failed to shutdown HTTP server gracefully")
	}

	// Let queued notifications finish
	application.Hooks.Wait()

	log.Info("server shutdown completed")
}

// openStore connects the configured driver and prepares its schema
func openStore(cfg *config.Config, log *logrus.Logger) (*database.Store, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), nil
	}

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		return nil, err
	}

	migration := postgres.NewMigration(db, log)
	if err := migration.RunAutoMigrations(); err != nil {
		return nil, err
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("index creation failed")
	}

	if cfg.Database.SeedOnStart {
		if err := migration.SeedInitialData(); err != nil {
			log.WithError(err).Warn("data seeding failed")
		}
	}

	if log.IsLevelEnabled(logrus.DebugLevel) {
		if info, err := migration.TableInfo(); err == nil {
			log.WithField("tables", info).Debug("table row counts")
		}
	}

	return postgres.NewStore(db), nil
}
