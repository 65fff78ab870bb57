package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/infrastructure/configs"
	"github.com/hilthontt/metaverse/internal/infrastructure/events"
	"github.com/hilthontt/metaverse/internal/infrastructure/logging"
	"github.com/hilthontt/metaverse/internal/infrastructure/messaging"
	"github.com/hilthontt/metaverse/internal/infrastructure/metrics"
	"github.com/hilthontt/metaverse/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/metaverse/internal/infrastructure/tracing"
	"github.com/hilthontt/metaverse/internal/infrastructure/ws"
	"github.com/hilthontt/metaverse/internal/persistence/db"
	"github.com/hilthontt/metaverse/internal/persistence/repository"
	"github.com/hilthontt/metaverse/internal/presentation/api"
	"github.com/hilthontt/metaverse/internal/presentation/handler/health"
	"github.com/hilthontt/metaverse/internal/presentation/handler/presence"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sweepInterval = time.Minute

// @title           Metaverse Presence API
// @version         1.0
// @description     Real-time presence and broadcast service for shared spaces.
// @BasePath        /
func main() {
	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sh, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to initialize the tracer", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer sh(context.WithoutCancel(ctx))

	var auditRepo domain.PresenceAuditRepository
	if cfg.Mongo.Enabled {
		mongoClient, err := db.NewMongoClient(ctx, cfg.Mongo, logger)
		if err != nil {
			logger.Fatal(logging.MongoDB, logging.Startup, "failed to connect to mongodb", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		defer db.DisconnectMongo(context.WithoutCancel(ctx), mongoClient)

		auditRepo = repository.NewPresenceAuditLogRepository(db.GetDatabase(mongoClient, cfg.Mongo))
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			logger.Warn(logging.MongoDB, logging.Startup, "failed to ensure audit log indexes", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		if err := auditRepo.DeleteOlderThan(ctx, time.Now().Add(-repository.AuditLogRetention)); err != nil {
			logger.Warn(logging.MongoDB, logging.Startup, "failed to prune expired audit logs", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
	}

	var publisher domain.PresenceEventPublisher = events.NopPublisher{}
	if cfg.Messaging.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.Messaging.URI, logger)
		if err != nil {
			logger.Fatal(logging.RabbitMQ, logging.Startup, "failed to connect to rabbitmq", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		defer rabbitmq.Close()

		presencePublisher := events.NewPresencePublisher(rabbitmq, logger, cfg.Messaging.BufferSize)
		defer presencePublisher.Close()
		publisher = presencePublisher

		expvar.Publish("presence_events_dropped", expvar.Func(func() any {
			return presencePublisher.Dropped()
		}))

		if auditRepo != nil {
			presenceConsumer := events.NewPresenceConsumer(rabbitmq, auditRepo, logger)
			go func() {
				if err := presenceConsumer.Listen(); err != nil {
					logger.Error(logging.RabbitMQ, logging.Consume, "presence consumer stopped", map[logging.ExtraKey]any{
						logging.ErrorMessage: err.Error(),
					})
				}
			}()
		}
	}

	presenceMetrics := metrics.NewPresence(prometheus.DefaultRegisterer)
	httpMetrics := metrics.NewHTTP(prometheus.DefaultRegisterer)

	hub := ws.NewHub(ws.NewRegistry(), ws.NewMembership(), publisher, presenceMetrics, logger)

	var inboundLimiter ratelimiter.Limiter
	if cfg.Presence.InboundPerSecond > 0 {
		inboundLimiter = ratelimiter.New(ratelimiter.Options{
			MaxRatePerSecond: cfg.Presence.InboundPerSecond,
			MaxBurst:         cfg.Presence.InboundBurst,
			Cache:            ratelimiter.NewInMemoryWithSweep(sweepInterval),
			CacheTTL:         cfg.WebSocket.PongWait,
		})
		defer inboundLimiter.Close()
	}

	presenceHandler := presence.NewHandler(
		hub,
		ws.NewUpgrader(cfg.WebSocket, cfg.HTTP.AllowedOrigins),
		auditRepo,
		inboundLimiter,
		presenceMetrics,
		logger,
		presence.Options{
			Client:  ws.ClientOptionsFromConfig(cfg.WebSocket),
			Session: ws.SessionConfig{RequireMembership: cfg.Presence.RequireMembership},
		},
	)
	healthHandler := health.NewHandler()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		Cache:            ratelimiter.NewInMemoryWithSweep(sweepInterval),
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	defer rl.Close()

	app := api.NewApplication(*cfg, presenceHandler, healthHandler, hub, logger, rl, httpMetrics, promhttp.Handler())

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("connections", expvar.Func(func() any {
		return hub.ConnectionCount()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Error(logging.General, logging.Shutdown, "server stopped with error", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
