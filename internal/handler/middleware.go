package handler

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/angeloszaimis/interactive-app/internal/metrics"
	"github.com/angeloszaimis/interactive-app/pkg/logger"
)

// RequestID assigns every request an ID, reusing X-Request-ID when the client
// sends one, and stores it in the request context for logging.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
		},
	})
}

// RequestLogger logs each request on receipt and on completion and emits
// request metrics. Unmatched routes (static files, 404s) are grouped under
// the "static" route label to keep label cardinality bounded.
func RequestLogger(log *slog.Logger, collector *metrics.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()
			start := time.Now()

			log.InfoContext(ctx, "Received request",
				slog.String("from", c.RealIP()),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("proto", req.Proto),
				slog.String("host", req.Host),
				slog.String("user_agent", req.UserAgent()))

			collector.RequestStarted()
			err := next(c)
			if err != nil {
				// Render now so the logged status is the one the client sees.
				c.Error(err)
			}
			collector.RequestFinished()

			duration := time.Since(start)
			status := c.Response().Status

			log.InfoContext(ctx, "Request completed",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", duration))

			collector.Emit(metrics.MetricEvent{
				Type:       metrics.EventResponseCompleted,
				Timestamp:  time.Now(),
				Method:     req.Method,
				Route:      routeLabel(c),
				Duration:   duration,
				StatusCode: status,
			})

			return nil
		}
	}
}

func routeLabel(c echo.Context) string {
	switch path := c.Path(); path {
	case "/api/info", "/api/submit", "/healthz", "/":
		return path
	default:
		return "static"
	}
}
