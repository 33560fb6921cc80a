package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/agrohub/marketplace/internal/cartstore"
	"github.com/agrohub/marketplace/internal/config"
	"github.com/agrohub/marketplace/internal/handler"
	"github.com/agrohub/marketplace/internal/notify"
	"github.com/agrohub/marketplace/internal/repository"
	"github.com/agrohub/marketplace/internal/service"
	"github.com/agrohub/marketplace/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("runMigrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}
	logger.Info("connected to postgres")

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis.ParseURL: %w", err)
	}

	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redisClient.Ping: %w", err)
	}
	logger.Info("connected to redis")

	carts := cartstore.NewRedisStore(redisClient, cfg.CartTTL, logger)

	products := repository.NewProduct(pool)
	orders := repository.NewOrder(pool)
	users := repository.NewUser(pool)
	audit := repository.NewAudit(pool)
	txManager := repository.NewTxManager(pool)

	sms := notify.NewSMSGateway(cfg.SMSAPIURL, cfg.SMSAPIKey, logger)

	router := handler.NewRouter(handler.Config{
		Carts:    service.NewCart(carts, products),
		Checkout: service.NewCheckout(carts, txManager, audit, logger),
		Orders:   service.NewOrderWorkflow(orders, users, sms, audit, logger),
		Logger:   logger,
	})

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}

	return nil
}

func runMigrations(databaseURL string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("iofs.New: %w", err)
	}

	// golang-migrate's pgx/v5 driver registers the pgx5 URL scheme.
	migrateURL := strings.Replace(databaseURL, "postgres://", "pgx5://", 1)

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL)
	if err != nil {
		return fmt.Errorf("migrate.NewWithSourceInstance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}

	return nil
}
