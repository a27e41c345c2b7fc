package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventResponseCompleted   EventType = "response_completed"
	EventSubmissionProcessed EventType = "submission_processed"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Method     string
	Route      string
	Duration   time.Duration
	StatusCode int
	Accepted   bool
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	logger  *slog.Logger
	done    chan struct{}
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// RequestStarted and RequestFinished move the in-flight gauge directly instead
// of going through the event buffer, so a full buffer cannot unbalance it.
func (c *Collector) RequestStarted() {
	if c == nil {
		return
	}
	c.metrics.RequestStarted()
}

func (c *Collector) RequestFinished() {
	if c == nil {
		return
	}
	c.metrics.RequestFinished()
}

// Emit queues an event without blocking. Events are dropped when the buffer is full.
func (c *Collector) Emit(event MetricEvent) bool {
	if c == nil {
		return false
	}

	select {
	case c.eventCh <- event:
		return true
	default:
		return false
	}
}

func (c *Collector) Metrics() *Metrics {
	return c.metrics
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

// Done is closed once the collector has drained its buffer after ctx cancellation.
func (c *Collector) Done() <-chan struct{} {
	return c.done
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")
	defer close(c.done)

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventResponseCompleted:
		c.metrics.RecordResponse(event.Method, event.Route, event.StatusCode, event.Duration)

	case EventSubmissionProcessed:
		c.metrics.RecordSubmission(event.Accepted)

	default:
		c.logger.Debug("Ignoring unknown metric event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}
