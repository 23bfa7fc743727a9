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
	"github.com/nats-io/nats.go"

	"github.com/gamepoint/travel-api/internal/adapters/http"
	"github.com/gamepoint/travel-api/internal/adapters/memcache"
	natsadapter "github.com/gamepoint/travel-api/internal/adapters/nats"
	"github.com/gamepoint/travel-api/internal/adapters/postgres"
	"github.com/gamepoint/travel-api/internal/adapters/routes"
	"github.com/gamepoint/travel-api/internal/adapters/valkey"
	"github.com/gamepoint/travel-api/internal/core/domain"
	"github.com/gamepoint/travel-api/internal/core/ports"
	"github.com/gamepoint/travel-api/internal/core/usecases"
	"github.com/gamepoint/travel-api/internal/pkg/config"
	"github.com/gamepoint/travel-api/internal/pkg/logging"
	"github.com/gamepoint/travel-api/internal/pkg/ratelimit"
	"github.com/gamepoint/travel-api/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("travel-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Venue registry: loaded from Postgres at startup, falling back to
	// the built-in list. No per-request database access either way.
	var db *postgres.DB
	venues := domain.DefaultVenues()
	if pg, err := postgres.New(ctx, cfg.Database.DSN()); err != nil {
		slog.Warn("database unavailable, using built-in venues", "error", err)
	} else {
		db = pg
		defer db.Close()
		if loaded, err := postgres.NewVenueRepo(db).ListAll(ctx); err != nil {
			slog.Warn("venue load failed, using built-in venues", "error", err)
		} else if len(loaded) > 0 {
			venues = loaded
		}
	}
	registry := usecases.NewVenueRegistry(venues)
	slog.Info("venue registry ready", "venues", len(registry.List()))

	// Result cache
	var cache ports.ResultCache
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	if cfg.Cache.Backend == "valkey" {
		vk, err := valkey.New(cfg.Cache.ValkeyAddr, ttl, cfg.Cache.KeyPrecision)
		if err != nil {
			slog.Warn("valkey unavailable, using memory cache", "error", err)
			cache = memcache.New(ttl, cfg.Cache.KeyPrecision)
		} else {
			defer vk.Close()
			cache = vk
		}
	} else {
		cache = memcache.New(ttl, cfg.Cache.KeyPrecision)
	}

	// Events
	var events ports.EventPublisher
	var natsConn *nats.Conn
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
		if raw, err := natsadapter.RawConn(cfg.NATS.URL); err == nil {
			natsConn = raw
		}
	}

	// Routing provider, gated by one process-wide throttle. No API key
	// means unconfigured: every request serves the geometric fallback.
	var provider ports.RouteProvider
	if cfg.Routing.APIKey != "" {
		limiter := ratelimit.NewIntervalLimiter(time.Duration(cfg.Routing.MinIntervalMS) * time.Millisecond)
		provider = routes.New(cfg.Routing.Endpoint, cfg.Routing.APIKey, limiter,
			time.Duration(cfg.Routing.TimeoutSec)*time.Second)
	} else {
		slog.Warn("routing api key not set, serving fallback estimates only")
	}

	deps := &http.Dependencies{
		Registry:  registry,
		Estimates: usecases.NewEstimateService(registry, provider, cache, events),
		Fallback:  usecases.NewFallbackService(registry),
		Cache:     cache,
		NATS:      natsConn,
		DB:        db,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "GamePoint Travel API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.gamepoint.cz",
		AllowMethods:     "GET,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
