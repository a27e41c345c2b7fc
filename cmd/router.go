package main

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/angeloszaimis/interactive-app/config"
	"github.com/angeloszaimis/interactive-app/internal/handler"
	"github.com/angeloszaimis/interactive-app/internal/metrics"
)

// maxBodySize mirrors the default limit of common JSON body parsers.
const maxBodySize = "100K"

func setupRouter(cfg *config.Config, log *slog.Logger, apiHandler *handler.APIHandler, metricsCollector *metrics.Collector) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(handler.RequestID())
	e.Use(handler.RequestLogger(log, metricsCollector))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))

	// Static files take precedence over routes, so a file under the static
	// root shadows any route with the same path. Only GET and HEAD are served.
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Skipper: skipNonReadMethods,
		Root:    cfg.Static.Dir,
		Index:   "index.html",
		Browse:  cfg.Static.Browse,
	}))

	e.GET("/api/info", apiHandler.Info)
	e.POST("/api/submit", apiHandler.Submit)
	e.GET("/healthz", apiHandler.Health)

	// The static middleware answers "/" while index.html exists; this route
	// only turns a missing index into a 404.
	e.GET("/", func(c echo.Context) error {
		return c.File(filepath.Join(cfg.Static.Dir, "index.html"))
	})

	if cfg.Metrics.Enabled && metricsCollector != nil {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(metricsCollector.Handler()))
	}

	return e
}

func skipNonReadMethods(c echo.Context) bool {
	switch c.Request().Method {
	case http.MethodGet, http.MethodHead:
		return false
	default:
		return true
	}
}
