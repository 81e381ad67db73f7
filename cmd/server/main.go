package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/tienda/internal/assets"
	"github.com/Skotchmaster/tienda/internal/config"
	"github.com/Skotchmaster/tienda/internal/db"
	"github.com/Skotchmaster/tienda/internal/events"
	"github.com/Skotchmaster/tienda/internal/logging"
	"github.com/Skotchmaster/tienda/internal/metrics"
	"github.com/Skotchmaster/tienda/internal/repo"
	"github.com/Skotchmaster/tienda/internal/search"
	"github.com/Skotchmaster/tienda/internal/service"
	"github.com/Skotchmaster/tienda/internal/session"
	httpserver "github.com/Skotchmaster/tienda/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, db.FromConfig(cfg))
	if err != nil {
		logger.Error("db_open_error", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("db_migrate_error", "error", err)
		os.Exit(1)
	}

	var (
		sessions session.Store
		rdb      *redis.Client
	)
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis_ping_error", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(rdb)
	default:
		store := session.NewGormStore(gdb)
		if n, err := store.PurgeExpired(ctx); err != nil {
			logger.Warn("session_purge_error", "error", err)
		} else if n > 0 {
			logger.Info("session_purge", "removed", n)
		}
		sessions = store
	}

	producer := events.New(cfg.KafkaBrokers)
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS not set")
	}

	r := repo.New(gdb)
	catalog := &service.CatalogService{
		Repo:   r,
		Assets: assets.New(cfg.UploadDir),
		Events: producer,
	}
	if cfg.ESURL != "" {
		client, err := search.NewClient(search.Options{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Error("elasticsearch_error", "error", err)
			os.Exit(1)
		}
		idx := &search.ESIndex{ES: client, Index: cfg.ESIndex}
		if err := idx.Ping(ctx); err != nil {
			logger.Warn("elasticsearch_unavailable", "url", cfg.ESURL, "error", err)
		}
		catalog.Index = idx
	}

	e, err := httpserver.New(&httpserver.Deps{
		DB:      gdb,
		Logger:  logger,
		Metrics: metrics.New(),
		Auth: &service.AuthService{
			Repo:     r,
			Sessions: session.NewManager(sessions, cfg.SessionSecret, cfg.SessionIdleTimeout, cfg.SessionMaxAge, cfg.CookieSecure),
			Events:   producer,
		},
		Catalog:      catalog,
		Assets:       catalog.Assets,
		CSRFEnabled:  cfg.CSRFEnabled,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		logger.Error("router_error", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis_close_error", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("shutdown complete")
}
