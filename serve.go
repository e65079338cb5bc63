package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"achievement-engine/config"
	"achievement-engine/handlers"
	"achievement-engine/middleware"
	"achievement-engine/services"
	"achievement-engine/store"
	"achievement-engine/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, event consumer and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg := config.Load()
	logger := setupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	cat, source, err := loadCatalog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded", "source", source, "version", cat.Version(), "achievements", cat.Len())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	st := store.NewGormStore(db)
	ledger := services.NewPointsLedger(cat, st)
	provider := services.NewAnalyticsMetricsProvider(db, ledger)
	analytics := services.NewAnalyticsService(db)
	notifications := services.NewNotificationService(db, logger)

	notifier := services.MultiNotifier{notifications}
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL,
			nats.Name(appName),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			return fmt.Errorf("connect to NATS at %s: %w", cfg.NATSURL, err)
		}
		defer func() { _ = nc.Drain() }()
		notifier = append(notifier, services.NewNATSNotifier(nc))
	}

	engine := services.NewEngine(cat, st, ledger, provider,
		services.WithNotifier(notifier),
		services.WithEngineMetrics(services.NewEngineMetrics(reg)),
		services.WithLogger(logger),
	)

	if nc != nil {
		if _, err := workers.NewEventConsumer(analytics, engine, logger).Subscribe(ctx, nc); err != nil {
			return err
		}
		logger.Info("activity consumer subscribed", "subject", workers.ActivitySubject, "queue", workers.ActivityQueue)
	}

	sweeper := workers.NewActivitySweeper(analytics, engine, cfg.SweepLookback, logger)
	if cfg.SweepInterval > 0 {
		sched, err := services.StartSweepScheduler(ctx, cfg.SweepInterval, sweeper.Run, logger)
		if err != nil {
			return err
		}
		defer func() { _ = sched.Shutdown() }()
	}

	if cfg.ProfileSyncURL != "" {
		workers.NewProfileSyncWorker(db, cfg.ProfileSyncURL, cfg.ServiceToken, cfg.ProfileSyncInterval, engine, logger).Start(ctx)
	}

	app := fiber.New(fiber.Config{AppName: appName})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     normalizeOrigins(cfg.AllowedOrigins),
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, Cache-Control",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	// Only Gateway requests allowed, except probes and scrapes.
	app.Use(middleware.GatewayAuthMiddleware(cfg.GatewayToken, handlers.HealthPath, handlers.MetricsPath))

	handlers.SetupSystemRoutes(app, reg, sqlDB.PingContext)
	handlers.SetupAchievementRoutes(app, engine)
	handlers.SetupActivityRoutes(app, analytics, engine)
	handlers.SetupNotificationRoutes(app, notifications, []byte(cfg.JWTSecret))
	handlers.SetupAdminRoutes(app, engine, sweeper)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server error", "error", err)
			stop()
		}
	}()
	logger.Info("server running", "port", cfg.Port, "version", Version)

	<-ctx.Done()
	logger.Info("shutting down server")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// normalizeOrigins trims the comma separated ALLOWED_ORIGINS list.
func normalizeOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		slog.Warn("ALLOWED_ORIGINS is empty, using default", "default", "http://localhost:3000")
		return "http://localhost:3000"
	}
	return strings.Join(origins, ",")
}
