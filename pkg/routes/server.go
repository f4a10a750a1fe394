// Package routes assembles the HTTP server of the Fern service.
package routes

import (
	"github.com/Gobusters/ectologger"
	prefillsvc "github.com/Ramsey-B/fern/internal/services/prefill"
	"github.com/Ramsey-B/fern/pkg/health"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/routes/prefill"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

type ServerConfig struct {
	ServiceName  string
	AllowOrigins []string
	AllowMethods []string
}

// NewServer builds the echo instance with middleware, health checks,
// metrics and the prefill API under /api/v1.
func NewServer(config ServerConfig, logger ectologger.Logger, service *prefillsvc.Service, checker *health.Checker) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: config.AllowOrigins,
		AllowMethods: config.AllowMethods,
	}))
	e.Use(otelecho.Middleware(config.ServiceName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	prefill.NewHandler(service).Register(api)

	return e
}
