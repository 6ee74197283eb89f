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

	"github.com/fjod/shoes_shop/internal/auth"
	"github.com/fjod/shoes_shop/internal/cache"
	"github.com/fjod/shoes_shop/internal/config"
	"github.com/fjod/shoes_shop/internal/domain"
	h "github.com/fjod/shoes_shop/internal/http"
	"github.com/fjod/shoes_shop/internal/publisher"
	"github.com/fjod/shoes_shop/internal/repository"
	"github.com/fjod/shoes_shop/internal/service"
	"github.com/fjod/shoes_shop/pkg/logger"
	"github.com/fjod/shoes_shop/pkg/telemetry"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)
	slog.Info("shoes_shop starting", "db_driver", cfg.DBDriver)

	ctx := context.Background()

	shutdownTracer, err := telemetry.SetupTracer(ctx, "shoes_shop", cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("failed to shut down tracing", "error", err)
		}
	}()
	if cfg.OTLPEndpoint != "" {
		slog.Info("exporting traces", "endpoint", cfg.OTLPEndpoint)
	}

	repo, err := openRepository(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.DB.MigrationsDirPath); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations completed", "driver", repo.Driver())

	var orderCache cache.OrderCache = cache.NopCache{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		slog.Info("redis ping succeeded", "addr", cfg.RedisAddr)
		orderCache = cache.NewRedisCache(redisClient)
	}

	var events publisher.Publisher = publisher.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		events = publisher.NewKafkaPublisher(cfg.KafkaBrokers...)
		slog.Info("publishing order events", "brokers", cfg.KafkaBrokers, "topic", publisher.OrderEventsTopic)
	}
	defer events.Close()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(repo, tokens)
	orderService := service.NewOrderService(repo, repo, repo, orderCache, events)
	productService := service.NewProductService(repo)

	if cfg.AdminLogin != "" {
		created, err := authService.EnsureUser(ctx, "Administrator", cfg.AdminLogin, cfg.AdminPassword, domain.RoleAdmin)
		if err != nil {
			slog.Error("failed to bootstrap administrator", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("administrator account created", "login", cfg.AdminLogin)
		}
	}

	router := h.NewRouter(h.RouterConfig{
		Store:          repo,
		Tokens:         tokens,
		Orders:         h.NewOrdersHandler(orderService, cfg.RequestTimeout, cfg.MaxRequestBodySize),
		Products:       h.NewProductHandler(productService, orderService, cfg.RequestTimeout),
		Auth:           h.NewAuthHandler(authService, cfg.RequestTimeout, cfg.MaxRequestBodySize),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	slog.Info("shoes_shop stopped")
}

func openRepository(cfg *config.Config) (*repository.Repository, error) {
	if cfg.DBDriver == repository.DriverPostgres {
		return repository.NewRepository(&cfg.DB)
	}
	return repository.NewSQLiteRepository(cfg.SQLitePath)
}
