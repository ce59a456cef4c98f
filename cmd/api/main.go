package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/adapters/handler"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/adapters/lock"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/adapters/middleware"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/adapters/repository"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/config"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/services"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/logging"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	ctx := context.Background()
	var checks []handler.DependencyCheck

	var store ports.RecordStore
	switch cfg.StoreBackend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer db.Close()
		store = repository.NewPostgresStore(db, logger)
		checks = append(checks, handler.DatabaseCheck(db))
	default:
		logger.Warn("using in-memory store, records are lost on restart")
		store = repository.NewMemoryStore()
	}

	var locker ports.RecordLocker
	if cfg.RedisAddress != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		logger.Info("connected to redis", zap.String("address", cfg.RedisAddress))

		locker = lock.NewRedisLocker(redisClient, cfg.LockTTL, logger)
		checks = append(checks, handler.RedisCheck(redisClient))
	} else {
		logger.Warn("REDIS_ADDRESS not set, record locks are process-local")
		locker = lock.NewLocalLocker()
	}

	registrationService := services.NewRegistrationService(store, logger)
	lifecycleService := services.NewLifecycleService(store, locker, logger)

	mux := handler.NewRouter(handler.Router{
		Registration: handler.NewRegistrationHandler(registrationService, logger),
		Donors:       handler.NewDonorHandler(lifecycleService, logger),
		Requests:     handler.NewRequestHandler(lifecycleService, logger),
		Health:       handler.NewHealthHandler(logger, checks...),
		Auth:         middleware.NewAuthMiddleware(cfg.JWTPublicKey, logger),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORSMiddleware(cfg.AllowedOrigins())(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
