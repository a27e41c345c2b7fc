package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Metrics owns the Prometheus collectors for the HTTP surface. Each instance
// has its own registry so independent servers never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts completed requests by method, route and status code.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration tracks request latency in seconds by method and route.
	RequestDuration *prometheus.HistogramVec
	// RequestsInFlight is the number of requests currently being served.
	RequestsInFlight prometheus.Gauge
	// SubmissionsTotal counts submissions by outcome (accepted/rejected).
	SubmissionsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "submissions_total",
				Help: "Total message submissions by outcome",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.SubmissionsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RequestStarted() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) RequestFinished() {
	m.RequestsInFlight.Dec()
}

func (m *Metrics) RecordResponse(method, route string, statusCode int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordSubmission(accepted bool) {
	outcome := OutcomeRejected
	if accepted {
		outcome = OutcomeAccepted
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}
