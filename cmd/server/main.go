// Package main is the entry point for the waha-sync HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	rediscache "github.com/popeskul/waha-sync/internal/cache/redis"
	"github.com/popeskul/waha-sync/internal/config"
	"github.com/popeskul/waha-sync/internal/gateway"
	"github.com/popeskul/waha-sync/internal/handler"
	"github.com/popeskul/waha-sync/internal/infrastructure/migrate"
	"github.com/popeskul/waha-sync/internal/middleware"
	"github.com/popeskul/waha-sync/internal/notify"
	"github.com/popeskul/waha-sync/internal/repository"
	"github.com/popeskul/waha-sync/internal/service"
	"github.com/popeskul/waha-sync/internal/ws"
)

const startupAttempts = 5

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		runner := migrate.NewRunner(&migrate.Config{
			DatabaseURL:    cfg.Database.GetURL(),
			MigrationsPath: cfg.Database.MigrationsPath,
		}, logger)
		if err := withRetry(ctx, logger, "migrations", startupAttempts, runner.Run); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	var db *sqlx.DB
	err = withRetry(ctx, logger, "postgres", startupAttempts, func() error {
		var connErr error
		db, connErr = sqlx.Connect("postgres", cfg.Database.GetDSN())
		return connErr
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	err = withRetry(ctx, logger, "redis", startupAttempts, func() error {
		return redisClient.Ping(ctx).Err()
	})
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	repo := repository.NewRepository(db)

	statusCache := rediscache.NewRedisCache(redisClient, "wasync:status:")
	seenCache := rediscache.NewRedisCache(redisClient, "wasync:")
	gw := gateway.NewClient(&cfg.Gateway, statusCache, logger)

	hub := ws.NewHub(logger)
	fanout := buildFanout(cfg, hub, redisClient, logger)
	defer func() {
		if err := fanout.Close(); err != nil {
			logger.Error("Failed to close notification sinks", zap.Error(err))
		}
	}()

	svc := service.NewService(cfg, repo, gw, redisClient, seenCache, fanout, logger)

	h := handler.NewHandler(svc, logger)

	router := setupRouter(h, ws.NewHandler(hub, cfg.Middleware.AllowedOrigins, logger), cfg.Notify.WebSocket)

	middlewareConfig := &middleware.Config{
		Logger:         logger,
		RateLimit:      rate.Limit(cfg.Middleware.RateLimit),
		RateLimitBurst: cfg.Middleware.RateLimitBurst,
		RequestTimeout: time.Duration(cfg.Middleware.RequestTimeout) * time.Second,
	}
	if cfg.Middleware.EnableCORS {
		corsConfig := middleware.DefaultCORSConfig()
		corsConfig.AllowedOrigins = cfg.Middleware.AllowedOrigins
		middlewareConfig.CORS = corsConfig
	}

	finalHandler := middleware.Chain(middlewareConfig)(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      finalHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if svc.Scheduler.Enabled() {
		if err := svc.Scheduler.Start(); err != nil {
			logger.Error("Failed to start scheduler on startup", zap.Error(err))
		} else {
			logger.Info("Sync scheduler started",
				zap.Duration("interval", svc.Scheduler.Interval()),
				zap.Strings("sinks", fanout.Names()))
		}
	} else {
		logger.Info("Sync is disabled by configuration; scheduler not started")
	}

	go func() {
		logger.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Waits for an in-flight pass to finish before the store goes away.
	if svc.Scheduler.IsRunning() {
		if err := svc.Scheduler.Stop(); err != nil {
			logger.Error("Failed to stop scheduler", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildFanout registers every configured notification sink. A sink that
// cannot be set up is logged and left out.
func buildFanout(cfg *config.Config, hub *ws.Hub, redisClient *redis.Client, logger *zap.Logger) *notify.Fanout {
	fanout := notify.NewFanout(logger)

	if cfg.Notify.WebSocket {
		fanout.Add("websocket", hub)
	}

	if cfg.Notify.AMQPURL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.Notify.AMQPURL, cfg.Notify.AMQPExchange, logger)
		if err != nil {
			logger.Warn("AMQP sink disabled", zap.Error(err))
		} else {
			fanout.Add("amqp", publisher)
		}
	}

	if cfg.Notify.RedisChannel != "" {
		fanout.Add("redis", notify.NewRedisPublisher(redisClient, cfg.Notify.RedisChannel))
	}

	return fanout
}
