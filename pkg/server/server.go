// Package server assembles the HTTP surface: tracing, middleware stack and
// route registration.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/middleware"
	fieldaliasroutes "github.com/Ramsey-B/clover/pkg/routes/fieldalias"
	headerroutes "github.com/Ramsey-B/clover/pkg/routes/headers"
	"github.com/Ramsey-B/clover/pkg/routes/health"
	matchroutes "github.com/Ramsey-B/clover/pkg/routes/match"
	prospectroutes "github.com/Ramsey-B/clover/pkg/routes/prospect"
	scoreroutes "github.com/Ramsey-B/clover/pkg/routes/score"
	settingsroutes "github.com/Ramsey-B/clover/pkg/routes/settings"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// InitTracing configures the global tracer provider and wires the span helper.
// The returned shutdown function flushes pending spans.
func InitTracing(cfg config.Config) func(context.Context) error {
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.AppName),
	)

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	return tp.Shutdown
}

// Server is the assembled echo application
type Server struct {
	echo   *echo.Echo
	cfg    config.Config
	logger ectologger.Logger
}

// New builds the echo application with the full middleware stack and every
// route group registered. Handlers resolve their dependencies through the
// injection container, so the server itself only needs the health checker.
func New(cfg config.Config, checker *health.Checker, logger ectologger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.HTTPErrorHandler = middleware.Error(logger)

	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	matchroutes.Register(api.Group("/match"))
	scoreroutes.Register(api.Group("/score"))
	settingsroutes.Register(api.Group("/settings"))
	headerroutes.Register(api.Group("/headers"))
	fieldaliasroutes.Register(api.Group("/aliases"))
	prospectroutes.Register(api.Group("/prospects"))

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

// Echo exposes the underlying echo instance for tests
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.WithFields(map[string]any{"addr": addr}).Info("Starting HTTP server")
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
