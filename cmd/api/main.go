package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autofix/internal/api"
	"autofix/internal/config"
	"autofix/internal/database"
	"autofix/internal/domain"
	"autofix/internal/events"
	"autofix/internal/logging"
	"autofix/internal/metrics"
	"autofix/internal/repository"
	"autofix/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	metrics.Register()

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	sessions, redisClient := initSessions(cfg, logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	eventBus := events.NewEventBus()
	subscribeEventConsumers(eventBus, logger)

	bookingService := service.NewBookingService(db, eventBus, logger)
	notificationService := service.NewNotificationService(db)
	authService := service.NewAuthService(db, sessions, logger)

	server := api.NewServer(cfg, bookingService, notificationService, authService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
		go backup.Start(ctx)
	}

	startMetrics(ctx, cfg, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, &logger, closer, nil
}

// initSessions prefers Redis with an in-memory fallback; without Redis
// the in-memory store carries sessions alone.
func initSessions(cfg *config.Config, logger *zerolog.Logger) (domain.SessionRepository, *redis.Client) {
	memory := repository.NewMemorySessionRepository(cfg.Session.TTL())
	if !cfg.Redis.Enabled {
		logger.Info().Msg("redis disabled, using in-memory sessions")
		return memory, nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable at startup, failover will retry")
	}

	primary := repository.NewRedisSessionRepository(client, cfg.Session.TTL())
	return repository.NewFailoverSessionRepository(primary, memory, logger), client
}

func subscribeEventConsumers(bus *events.EventBus, logger *zerolog.Logger) {
	auditLogger := logger.With().Str("component", "booking-events").Logger()

	bookingHandler := func(event *events.Event) error {
		metrics.IncBookingEvent(event.Type)

		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		auditLogger.Info().
			Str("event", event.Type).
			Int64("booking_id", payload.BookingID).
			Str("booking_ref", payload.BookingRef).
			Str("status", payload.Status).
			Msg("booking event")
		return nil
	}

	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingUpdated,
		events.EventBookingDeleted,
	} {
		bus.Subscribe(eventType, bookingHandler)
	}

	bus.Subscribe(events.EventBookingsAssigned, func(event *events.Event) error {
		metrics.IncBookingEvent(event.Type)

		var payload events.AssignmentEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		metrics.AddAssigned(payload.AssignedCount)
		auditLogger.Info().Int("assigned_count", payload.AssignedCount).Msg("auto-assign run")
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("metrics listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
