package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/rook-prog/CartoZen/internal/adapters/http"
	natsadapter "github.com/rook-prog/CartoZen/internal/adapters/nats"
	"github.com/rook-prog/CartoZen/internal/adapters/postgres"
	"github.com/rook-prog/CartoZen/internal/adapters/tabular"
	"github.com/rook-prog/CartoZen/internal/adapters/valkey"
	"github.com/rook-prog/CartoZen/internal/core/ports"
	"github.com/rook-prog/CartoZen/internal/core/usecases"
	"github.com/rook-prog/CartoZen/internal/pkg/config"
	"github.com/rook-prog/CartoZen/internal/pkg/logging"
	"github.com/rook-prog/CartoZen/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("cartozen-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup("cartozen-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			logger.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{
		Reader:   tabular.NewReader(),
		Defaults: cfg.Pipeline.PlanDefaults(),
	}

	// Interfaces stay nil when a backend is off so the service sees "absent",
	// not a typed nil.
	var (
		cache     ports.CacheService
		publisher ports.EventPublisher
		opts      = []usecases.PlanOption{usecases.WithPlanTTL(cfg.Valkey.PlanTTL)}
	)

	// Cache
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			logger.Warn("valkey unavailable, plans will not be retrievable", "error", err)
		} else {
			defer c.Close()
			cache = c
			deps.Cache = c
		}
	}

	// NATS
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw connection for the WebSocket relay
		nc, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			logger.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer nc.Drain()
			deps.NATS = nc
		}
	}

	// Database
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)

		deps.DB = db
		opts = append(opts, usecases.WithStationSource(postgres.NewStationSource(db, cfg.Sources)))
	}

	deps.Plans = usecases.NewPlanService(cache, publisher, opts...)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      "CartoZen API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", http.Version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
