// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/agecategory"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/cache"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/config"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/database"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/events"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/handler"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/inventory"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/logger"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/metrics"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/pricing"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/repository"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
	zlog.Info("server stopped")
}

func run(cfg config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database, zlog)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// ── 2. Optional rule cache ────────────────────────────────────────────
	resolverOpts := []agecategory.Option{agecategory.WithMetrics(m), agecategory.WithLogger(zlog)}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		ruleCache := cache.NewRuleCache(rdb, cache.WithTTL(cfg.Redis.RuleTTL))
		resolverOpts = append(resolverOpts, agecategory.WithCache(ruleCache))
		zlog.Info("age rule cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	tx := database.NewTransactor(pool)
	eventRepo := repository.NewEventRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	attendeeRepo := repository.NewAttendeeRepository(pool)
	taxRepo := repository.NewTaxRepository(pool)
	ruleRepo := repository.NewRuleRepository(pool)
	outboxRepo := repository.NewOutboxRepository(pool)

	registrationSvc := service.NewRegistrationService(service.RegistrationDeps{
		Tx:         tx,
		Events:     eventRepo,
		Users:      userRepo,
		Products:   productRepo,
		Orders:     orderRepo,
		Attendees:  attendeeRepo,
		Taxes:      pricing.NewCalculator(taxRepo),
		Inventory:  inventory.NewResolver(productRepo),
		Categories: agecategory.NewResolver(ruleRepo, resolverOpts...),
		Notifier:   events.NewNotifier(outboxRepo),
		Dispatcher: events.NewDispatcher(outboxRepo),
		Log:        zlog,
		Metrics:    m,
	})
	ruleSvc := service.NewRuleService(tx, ruleRepo, productRepo, zlog)

	// ── 4. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger(zlog))
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/events", handler.EventRoutes(
		handler.NewAttendeeHandler(registrationSvc, zlog),
		handler.NewRuleHandler(ruleSvc, zlog),
		handler.Authenticate([]byte(cfg.Auth.JWTSigningKey), zlog),
	))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// ── 5. Optional outbox relay ──────────────────────────────────────────
	var relay *events.Relay
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := events.NewKafkaClient(cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := events.EnsureTopic(ctx, client, cfg.Kafka.Topic, 3, 1); err != nil {
			return err
		}
		relay = events.NewRelay(outboxRepo, tx, events.NewKafkaPublisher(client, cfg.Kafka.Topic),
			events.RelayConfig{Interval: cfg.Kafka.PollInterval, BatchSize: cfg.Kafka.BatchSize}, zlog, m)
	} else {
		zlog.Warn("KAFKA_BROKERS not set, outbox relay disabled")
	}

	// ── 6. Run until a shutdown signal ────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	if relay != nil {
		g.Go(func() error { return relay.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
