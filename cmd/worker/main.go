package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/rook-prog/CartoZen/internal/adapters/nats"
	"github.com/rook-prog/CartoZen/internal/adapters/valkey"
	"github.com/rook-prog/CartoZen/internal/core/ports"
	"github.com/rook-prog/CartoZen/internal/core/usecases"
	"github.com/rook-prog/CartoZen/internal/pkg/config"
	"github.com/rook-prog/CartoZen/internal/pkg/logging"
	"github.com/rook-prog/CartoZen/internal/pkg/telemetry"
)

// The worker drains queued plan jobs from JetStream, builds each plan and
// publishes a completed or failed event. Built plans go to valkey so the
// API can serve them by id.
func main() {
	cfg, err := config.Load("cartozen-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup("cartozen-worker", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			logger.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			logger.Warn("valkey unavailable, results only go out as events", "error", err)
		} else {
			defer c.Close()
			cache = c
		}
	}

	plans := usecases.NewPlanService(cache, pub, usecases.WithPlanTTL(cfg.Valkey.PlanTTL))

	if err := sub.SubscribePlanRequests(ctx, plans.Handle); err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	logger.Info("worker consuming plan requests", "subject", natsadapter.SubjectPlanRequested)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("received signal, shutting down worker", "signal", sig.String())
	cancel()
	// Give in-flight jobs time to ack
	time.Sleep(2 * time.Second)
}
