package handler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/angeloszaimis/interactive-app/internal/handler"
	"github.com/angeloszaimis/interactive-app/internal/metrics"
	"github.com/angeloszaimis/interactive-app/pkg/logger"
)

var _ = Describe("Middleware", func() {
	var (
		e         *echo.Echo
		logs      *bytes.Buffer
		collector *metrics.Collector
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		logs = &bytes.Buffer{}
		log := logger.NewWithWriter(logs, "info", false, "development")

		ctx, cancel = context.WithCancel(context.Background())
		collector = metrics.NewCollector(64, slog.New(slog.NewTextHandler(io.Discard, nil)))
		collector.Start(ctx)

		e = echo.New()
		e.Use(handler.RequestID())
		e.Use(handler.RequestLogger(log, collector))

		e.GET("/healthz", func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})
		e.GET("/api/info", func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusTeapot, "nope")
		})
		e.GET("/request-id", func(c echo.Context) error {
			id, _ := logger.RequestID(c.Request().Context())
			return c.String(http.StatusOK, id)
		})
	})

	AfterEach(func() {
		cancel()
		Eventually(collector.Done()).Should(BeClosed())
	})

	Describe("RequestID", func() {
		It("should generate an id and expose it in the response header", func() {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/request-id", nil))

			id := rec.Header().Get(echo.HeaderXRequestID)
			Expect(id).To(HaveLen(36))
			Expect(rec.Body.String()).To(Equal(id))
		})

		It("should reuse the id sent by the client", func() {
			req := httptest.NewRequest(http.MethodGet, "/request-id", nil)
			req.Header.Set(echo.HeaderXRequestID, "client-id-1")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			Expect(rec.Header().Get(echo.HeaderXRequestID)).To(Equal("client-id-1"))
			Expect(rec.Body.String()).To(Equal("client-id-1"))
		})
	})

	Describe("RequestLogger", func() {
		It("should log receipt and completion with the request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set(echo.HeaderXRequestID, "trace-me")
			e.ServeHTTP(httptest.NewRecorder(), req)

			Expect(logs.String()).To(ContainSubstring(`msg="Received request"`))
			Expect(logs.String()).To(ContainSubstring(`msg="Request completed"`))
			Expect(logs.String()).To(ContainSubstring("status=200"))
			Expect(logs.String()).To(ContainSubstring("request_id=trace-me"))
		})

		It("should record the status rendered for handler errors", func() {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/info", nil))

			Expect(rec.Code).To(Equal(http.StatusTeapot))
			Expect(logs.String()).To(ContainSubstring("status=418"))
			Eventually(func() float64 {
				return testutil.ToFloat64(collector.Metrics().RequestsTotal.WithLabelValues("GET", "/api/info", "418"))
			}).Should(Equal(1.0))
		})

		It("should emit request metrics by route", func() {
			e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
			e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Eventually(func() float64 {
				return testutil.ToFloat64(collector.Metrics().RequestsTotal.WithLabelValues("GET", "/healthz", "200"))
			}).Should(Equal(2.0))
			Expect(testutil.ToFloat64(collector.Metrics().RequestsInFlight)).To(Equal(0.0))
		})

		It("should count the request as in flight while the handler runs", func() {
			var during float64
			e.GET("/slow", func(c echo.Context) error {
				during = testutil.ToFloat64(collector.Metrics().RequestsInFlight)
				return c.NoContent(http.StatusNoContent)
			})
			e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))

			Expect(during).To(Equal(1.0))
			Expect(testutil.ToFloat64(collector.Metrics().RequestsInFlight)).To(Equal(0.0))
		})

		It("should keep the in-flight gauge balanced when metric events are dropped", func() {
			stalled := metrics.NewCollector(1, slog.New(slog.NewTextHandler(io.Discard, nil)))
			plain := echo.New()
			plain.Use(handler.RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), stalled))
			plain.GET("/healthz", func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})

			for i := 0; i < 5; i++ {
				rec := httptest.NewRecorder()
				plain.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
				Expect(rec.Code).To(Equal(http.StatusOK))
			}

			Expect(testutil.ToFloat64(stalled.Metrics().RequestsInFlight)).To(Equal(0.0))
		})

		It("should group unknown paths under one label", func() {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/file.js", nil))

			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Eventually(func() float64 {
				return testutil.ToFloat64(collector.Metrics().RequestsTotal.WithLabelValues("GET", "static", "404"))
			}).Should(Equal(1.0))
		})

		It("should work without a metrics collector", func() {
			plain := echo.New()
			plain.Use(handler.RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), nil))
			plain.GET("/healthz", func(c echo.Context) error {
				return errors.New("boom")
			})

			rec := httptest.NewRecorder()
			plain.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
