package api

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/hilthontt/metaverse/docs"
	"github.com/hilthontt/metaverse/internal/infrastructure/configs"
	"github.com/hilthontt/metaverse/internal/infrastructure/logging"
	"github.com/hilthontt/metaverse/internal/infrastructure/metrics"
	"github.com/hilthontt/metaverse/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/metaverse/internal/infrastructure/ws"
	healthHandler "github.com/hilthontt/metaverse/internal/presentation/handler/health"
	presenceHandler "github.com/hilthontt/metaverse/internal/presentation/handler/presence"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 10 * time.Second

type Application struct {
	config          configs.Config
	presenceHandler *presenceHandler.Handler
	healthHandler   *healthHandler.Handler
	hub             *ws.Hub
	logger          logging.Logger
	ratelimiter     ratelimiter.Limiter
	httpMetrics     *metrics.HTTP
	metricsHandler  http.Handler
}

func NewApplication(
	config configs.Config,
	presenceHandler *presenceHandler.Handler,
	healthHandler *healthHandler.Handler,
	hub *ws.Hub,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
	httpMetrics *metrics.HTTP,
	metricsHandler http.Handler,
) *Application {
	return &Application{
		config:          config,
		presenceHandler: presenceHandler,
		healthHandler:   healthHandler,
		hub:             hub,
		logger:          logger,
		ratelimiter:     ratelimiter,
		httpMetrics:     httpMetrics,
		metricsHandler:  metricsHandler,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(app.prometheusMiddleware)

	r.Handle("/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Get("/health", app.healthHandler.GetHealth)
	r.Get("/healthz", app.healthHandler.GetHealth)
	r.Get("/ready", app.healthHandler.GetHealth)
	r.Get("/live", app.healthHandler.GetHealth)

	// Sockets outlive any request timeout.
	r.With(app.rateLimiterMiddleware).Get("/ws/{userId}", app.presenceHandler.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(app.rateLimiterMiddleware)
		r.Use(app.enableCors)

		r.Get("/stats", app.presenceHandler.GetStats)
		r.Get("/users/{userId}/space", app.presenceHandler.GetUserSpace)

		r.Route("/spaces/{spaceId}", func(r chi.Router) {
			r.Get("/members", app.presenceHandler.GetSpaceMembers)
			r.Get("/audit", app.presenceHandler.GetSpaceAudit)
		})

		r.Get("/health", app.healthHandler.GetHealth)
	})

	return otelhttp.NewHandler(r, "metaverse.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- app.shutdown(ctx, srv)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}

// shutdown stops accepting requests, then closes every live socket and waits
// for their sessions to finish. Hijacked connections are not tracked by
// srv.Shutdown, so the hub closes them.
func (app *Application) shutdown(ctx context.Context, srv *http.Server) error {
	app.healthHandler.SetHealthy(false)

	httpErr := srv.Shutdown(ctx)

	// Hijacked sockets outlive srv.Shutdown, so the handler stops taking new
	// ones before the hub closes the rest.
	app.presenceHandler.Shutdown()
	closed := app.hub.Shutdown()
	app.logger.Info(logging.WebSocket, logging.Shutdown, "closed live connections", map[logging.ExtraKey]any{
		"connections": closed,
	})

	return errors.Join(httpErr, app.presenceHandler.Wait(ctx))
}
