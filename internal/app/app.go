package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/controller"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/graph"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/infrastructure/tracing"
	localmiddleware "github.com/alimikegami/pos-microservices/catalog-federation/internal/middleware"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/response"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

// App serves one graph over HTTP next to a separate metrics listener.
type App struct {
	DB     *sqlx.DB
	Config *config.Config
	Graph  *graph.Graph
	Server *echo.Echo

	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer

	metrics       *echo.Echo
	traceProvider *trace.TracerProvider
}

// Build wires middleware and routes without listening.
func (app *App) Build() *echo.Echo {
	if app.Server != nil {
		return app.Server
	}

	if app.Config.TracingConfig.CollectorHost != "" {
		tp, err := tracing.InitTracing(app.Config.ServiceName, app.Config.TracingConfig.CollectorHost)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize tracing")
		}
		app.traceProvider = tp
	}
	tracer := otel.Tracer(app.Config.ServiceName)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			req := c.Request()
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "",
		Registerer: app.Registerer,
	}))
	e.Use(localmiddleware.Logger)
	e.Use(middleware.Recover())

	g := e.Group("/api/v1")
	g.GET("/ping", func(c echo.Context) error {
		return response.WriteSuccessResponse(c, "pong", map[string]string{"service": app.Config.ServiceName})
	})

	controller.CreateGraphQLController(e.Group(""), app.Graph)

	app.Server = e
	return e
}

// prepare builds the servers once. Run calls it before starting any
// goroutine so StopServer only ever reads them.
func (app *App) prepare() {
	if app.Server == nil {
		app.Build()
	}

	if app.Config.MetricsPort != "" && app.metrics == nil {
		app.metrics = echo.New()
		app.metrics.HideBanner = true
		app.metrics.HidePort = true
		app.metrics.GET("/metrics", echoprometheus.NewHandler())
	}
}

// Start blocks serving until StopServer is called.
func (app *App) Start() error {
	app.prepare()
	e := app.Server

	if app.metrics != nil {
		go func() {
			if err := app.metrics.Start(fmt.Sprintf(":%s", app.Config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Failed to start metrics server")
			}
		}()
	}

	log.Info().Str("service", app.Config.ServiceName).Str("port", app.Config.ServicePort).Msg("server started")
	if err := e.Start(fmt.Sprintf(":%s", app.Config.ServicePort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) StopServer(ctx context.Context) error {
	var errs []error
	if app.Server != nil {
		errs = append(errs, app.Server.Shutdown(ctx))
	}
	if app.metrics != nil {
		errs = append(errs, app.metrics.Shutdown(ctx))
	}
	if app.traceProvider != nil {
		errs = append(errs, app.traceProvider.Shutdown(ctx))
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}
	return errors.Join(errs...)
}

// Run serves until ctx is done, then shuts down within the configured
// timeout. Workers run alongside the server and get a context cancelled on
// shutdown.
func (app *App) Run(ctx context.Context, workers ...func(ctx context.Context) error) error {
	app.prepare()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(app.Start)
	for _, w := range workers {
		g.Go(func() error { return w(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Str("service", app.Config.ServiceName).Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout)
		defer cancel()
		return app.StopServer(shutdownCtx)
	})

	return g.Wait()
}
