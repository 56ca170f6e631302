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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sungwon/chirper/internal/api"
	"github.com/sungwon/chirper/internal/config"
	"github.com/sungwon/chirper/internal/fanout"
	"github.com/sungwon/chirper/internal/logger"
	"github.com/sungwon/chirper/internal/msgstore"
	"github.com/sungwon/chirper/internal/notification"
	"github.com/sungwon/chirper/internal/provider"
	"github.com/sungwon/chirper/internal/queue"
	"github.com/sungwon/chirper/internal/storage"
	"github.com/sungwon/chirper/internal/worker"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(cfg.LoggerConfig())
	log.Info().Msg("starting queue worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool.
	db, err := storage.NewDB(ctx, cfg.Database.URL, cfg.Database.PoolMin, cfg.Database.PoolMax, cfg.Database.ConnectTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	queries := storage.New(db.Pool)

	mailer, err := provider.NewProvider(cfg.ProviderConfig(), nil, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build mail provider")
	}
	log.Info().Str("provider", mailer.GetName()).Msg("mail provider ready")

	archive, err := msgstore.New(ctx, cfg.ArchiveConfig(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open notification archive")
	}

	// The handler needs the enqueuer for fan-out and the backend needs the
	// handler, so the handler is bound after the backend is built.
	var handler queue.MessageHandler
	backend, err := queue.NewQueue(ctx, cfg.QueueConfig(), queue.MessageHandlerFunc(
		func(ctx context.Context, msg *queue.Message) error {
			return handler.HandleMessage(ctx, msg)
		}), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to queue")
	}
	defer backend.Close()

	deliverer := notification.NewDeliverer(queries, mailer, archive, notification.DelivererConfig{
		AppName:     cfg.App.Name,
		ChirpsURL:   cfg.App.ChirpsURL(),
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
	}, log)
	fan := fanout.New(queries, backend.Enqueuer, cfg.Notification.PageSize, log)
	handler = worker.NewHandler(fan, deliverer, log)

	metricsSrv := newMetricsServer(cfg.Queue.MetricsAddr, map[string]api.Pinger{
		"database": db,
		"mail":     api.PingFunc(mailer.HealthCheck),
	})
	go func() {
		log.Info().Str("addr", metricsSrv.Addr).Msg("worker metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()

	// Workers outlive the signal context; Stop drains them.
	if err := backend.Dequeuer.Start(context.WithoutCancel(ctx)); err != nil {
		log.Fatal().Err(err).Msg("failed to start queue workers")
	}
	log.Info().
		Str("queue_type", cfg.Queue.Type).
		Int("workers", cfg.Queue.Workers).
		Int32("page_size", cfg.Notification.PageSize).
		Msg("queue worker pool started")

	<-ctx.Done()
	log.Info().Msg("shutting down queue worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := backend.Dequeuer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("queue workers did not drain cleanly")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server forced to shutdown")
	}

	log.Info().Msg("queue worker stopped")
}

func newMetricsServer(addr string, checks map[string]api.Pinger) *http.Server {
	r := chi.NewRouter()
	r.Get("/healthz", api.HealthzHandler())
	r.Get("/readyz", api.ReadyzHandler(checks))
	r.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
