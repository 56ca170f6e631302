package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sungwon/chirper/internal/api"
	"github.com/sungwon/chirper/internal/auth"
	"github.com/sungwon/chirper/internal/bootstrap"
	"github.com/sungwon/chirper/internal/chirp"
	"github.com/sungwon/chirper/internal/config"
	"github.com/sungwon/chirper/internal/event"
	"github.com/sungwon/chirper/internal/fanout"
	"github.com/sungwon/chirper/internal/logger"
	"github.com/sungwon/chirper/internal/msgstore"
	"github.com/sungwon/chirper/internal/queue"
	"github.com/sungwon/chirper/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(cfg.LoggerConfig())
	log.Info().Msg("starting API server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewDB(ctx, cfg.Database.URL, cfg.Database.PoolMin, cfg.Database.PoolMax, cfg.Database.ConnectTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	log.Info().Msg("database connection established")
	queries := storage.New(db.Pool)

	if cfg.Seed.Enabled {
		users := make([]bootstrap.SeedUser, 0, len(cfg.Seed.Users))
		for _, u := range cfg.Seed.Users {
			users = append(users, bootstrap.SeedUser{Name: u.Name, Email: u.Email, Password: u.Password})
		}
		if _, err := bootstrap.SeedUsers(ctx, queries, users, log); err != nil {
			log.Fatal().Err(err).Msg("failed to seed users")
		}
	}

	// Producer-only queue backend: the API enqueues fan-out jobs and
	// reprocesses the DLQ but never consumes.
	backend, err := queue.NewQueue(ctx, cfg.QueueConfig(), nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to queue")
	}
	defer backend.Close()

	registry := event.NewRegistry(log)
	fanout.NewListener(backend.Enqueuer, log).Register(registry)
	chirps := chirp.NewService(queries, registry, log)

	archive, err := msgstore.New(ctx, cfg.ArchiveConfig(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open notification archive")
	}
	if _, ok := archive.(msgstore.Nop); ok {
		archive = nil
	}

	jwtService := auth.NewJWTService(cfg.JWTConfig())
	if cfg.Auth.SigningKey == "" || cfg.Auth.SigningKey == "change-me-in-production-use-a-strong-secret" {
		log.Warn().Msg("JWT signing key is not set or using default value; set CHIRPER_AUTH_SIGNING_KEY in production")
	}

	// Login lockout counters share the Redis queue's client; other backends
	// run without lockout.
	if backend.Redis == nil {
		log.Warn().Str("queue_type", cfg.Queue.Type).Msg("login lockout disabled without redis")
	}
	if len(cfg.Auth.AdminEmails) == 0 {
		log.Warn().Msg("no admin emails configured; dead-letter reprocess is disabled for all users")
	}

	router := api.NewRouter(api.Deps{
		Queries: queries,
		Chirps:  chirps,
		JWT:     jwtService,
		Limiter: auth.NewLoginLimiter(backend.Redis, cfg.LoginLimiterConfig()),
		DLQ:     backend.DLQ,
		Archive: archive,
		Ready:   map[string]api.Pinger{"database": db},
		Admins:  cfg.Auth.AdminEmails,
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	// Graceful shutdown with 30-second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
